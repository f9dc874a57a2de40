package task

import (
	"context"
	"encoding/json"
	"time"

	qport "marketchat/internal/infrastructure/queue/port"
	chat "marketchat/internal/pkg/chat/application/domain"
	"marketchat/internal/pkg/chat/application/usecase"
)

// SendMessageTaskType is the queue task name for the async ingest path.
const SendMessageTaskType = "chat:send_message"

// SendMessageTaskPayload is the JSON payload transported via the queue, kept
// decoupled from domain types.
type SendMessageTaskPayload struct {
	SenderID   string  `json:"senderId"`
	ReceiverID string  `json:"receiverId"`
	ListingID  *string `json:"listingId,omitempty"`
	Content    string  `json:"content"`
}

// RegisterSendMessageTask binds the handler to the worker server. The handler
// runs the same persist-then-push pipeline as the synchronous paths; the
// worker lives in the API process, so the hub is reachable for the push step.
// Validation failures are terminal: retrying cannot fix a malformed payload.
func RegisterSendMessageTask(srv qport.Server, uc *usecase.SendMessageUseCase) {
	srv.Register(SendMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p SendMessageTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		_, err := uc.Execute(ctx, usecase.SendMessageInput{
			SenderID:   p.SenderID,
			ReceiverID: p.ReceiverID,
			ListingID:  p.ListingID,
			Content:    p.Content,
		})
		if err != nil && chat.IsValidationError(err) {
			return nil
		}
		return err
	})
}
