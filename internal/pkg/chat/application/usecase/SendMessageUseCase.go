package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	chat "marketchat/internal/pkg/chat/application/domain"
	repository "marketchat/internal/pkg/chat/persistence/repository/port"
)

// MessageNotifier pushes an already-persisted message to the receiver's live
// channel, if any. It reports whether a channel accepted the payload; failures
// are never retried, the message just waits in storage for the next pull.
type MessageNotifier interface {
	NotifyNewMessage(receiverID string, m chat.Message) bool
}

// SendMessageInput carries one inbound send, from either the socket or the
// REST path.
type SendMessageInput struct {
	SenderID   string
	ReceiverID string
	ListingID  *string
	Content    string
}

// SendMessageOutput is the ack returned to the sender.
type SendMessageOutput struct {
	Message        chat.Message
	ConversationID string
	Pushed         bool
}

// SendMessageUseCase is the delivery pipeline: validate, resolve the scoped
// conversation, persist, then best-effort push. The durable write is the
// single delivery guarantee; a message is never pushed unless it was persisted
// first. Push order across concurrent sends may diverge from persist order.
type SendMessageUseCase struct {
	Repo     repository.ChatRepository
	Notifier MessageNotifier
	Log      *zap.Logger
}

func NewSendMessageUseCase(repo repository.ChatRepository, notifier MessageNotifier, log *zap.Logger) *SendMessageUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &SendMessageUseCase{Repo: repo, Notifier: notifier, Log: log}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	msg, err := chat.NewMessage(in.SenderID, in.ReceiverID, in.ListingID, in.Content)
	if err != nil {
		return nil, err
	}

	conv, err := uc.Repo.FindOrCreateConversation(ctx, msg.SenderID, msg.ReceiverID, msg.ListingID, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	pushed := false
	if uc.Notifier != nil {
		pushed = uc.Notifier.NotifyNewMessage(msg.ReceiverID, *msg)
	}

	uc.Log.Debug("message delivered",
		zap.String("message_id", msg.ID),
		zap.String("conversation_id", conv.ID),
		zap.Bool("pushed", pushed))

	return &SendMessageOutput{Message: *msg, ConversationID: conv.ID, Pushed: pushed}, nil
}
