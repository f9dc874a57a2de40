package usecase

import (
	"context"
	"fmt"

	chat "marketchat/internal/pkg/chat/application/domain"
	repository "marketchat/internal/pkg/chat/persistence/repository/port"
)

// ListConversationsInput wraps the calling identity.
type ListConversationsInput struct {
	UserID string
}

// ListConversationsUseCase returns the caller's conversations ordered by most
// recent activity.
type ListConversationsUseCase struct {
	Repo repository.ChatRepository
}

func NewListConversationsUseCase(repo repository.ChatRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]chat.Conversation, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	convs, err := uc.Repo.ListConversationsByUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if convs == nil {
		convs = []chat.Conversation{}
	}
	return convs, nil
}
