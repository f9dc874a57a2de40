package wire

import (
	"marketchat/internal/infrastructure/realtime"
	chat "marketchat/internal/pkg/chat/application/domain"
	"marketchat/internal/pkg/chat/application/usecase"
)

// HubNotifier adapts the connection registry to the pipeline's notifier port:
// encode the persisted message as a new_message frame and hand it to the
// receiver's live channel, if any.
type HubNotifier struct {
	hub *realtime.Hub
}

func NewHubNotifier(hub *realtime.Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

var _ usecase.MessageNotifier = (*HubNotifier)(nil)

func (n *HubNotifier) NotifyNewMessage(receiverID string, m chat.Message) bool {
	if n == nil || n.hub == nil {
		return false
	}
	payload, err := EncodeMessage(FrameNewMessage, m)
	if err != nil {
		return false
	}
	return n.hub.Push(receiverID, payload)
}
