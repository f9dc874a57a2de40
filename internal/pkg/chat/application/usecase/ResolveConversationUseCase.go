package usecase

import (
	"context"
	"fmt"
	"time"

	chat "marketchat/internal/pkg/chat/application/domain"
	repository "marketchat/internal/pkg/chat/persistence/repository/port"
)

// ResolveConversationInput identifies a thread by counterpart + listing scope
// instead of conversation id.
type ResolveConversationInput struct {
	UserID        string
	CounterpartID string
	ListingID     *string
}

// ResolveConversationUseCase is the convenience path: find-or-create the
// conversation for (caller, counterpart, scope). Backed by the same upsert the
// delivery pipeline uses, so it cannot duplicate rows under concurrency.
type ResolveConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewResolveConversationUseCase(repo repository.ChatRepository) *ResolveConversationUseCase {
	return &ResolveConversationUseCase{Repo: repo}
}

func (uc *ResolveConversationUseCase) Execute(ctx context.Context, in ResolveConversationInput) (*chat.Conversation, error) {
	if in.UserID == "" || in.CounterpartID == "" {
		return nil, fmt.Errorf("user_id and counterpart_id are required")
	}
	if in.UserID == in.CounterpartID {
		return nil, chat.ErrSelfMessage
	}

	conv, err := uc.Repo.FindOrCreateConversation(ctx, in.UserID, in.CounterpartID, in.ListingID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &conv, nil
}
