package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cacheport "marketchat/internal/infrastructure/cache/port"
	chat "marketchat/internal/pkg/chat/application/domain"
	repository "marketchat/internal/pkg/chat/persistence/repository/port"
)

const conversationCacheTTL = 10 * time.Minute

// GetMessagesInput fetches the ordered history of one conversation.
type GetMessagesInput struct {
	ConversationID string
	Limit          int
	Offset         int
}

// GetMessagesUseCase resolves the conversation's pair and scope, then lists
// messages matching them ascending by created_at. An unknown conversation id
// yields an empty list, not an error. The pair/scope of a conversation never
// changes, so the resolution step is memoized in the cache when one is wired.
type GetMessagesUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache
}

func NewGetMessagesUseCase(repo repository.ChatRepository, cache cacheport.Cache) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo, Cache: cache}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) ([]chat.Message, error) {
	if in.ConversationID == "" {
		return nil, fmt.Errorf("conversation_id is required")
	}

	conv, err := uc.resolveConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if conv == nil {
		return []chat.Message{}, nil
	}

	msgs, err := uc.Repo.ListMessagesByPair(ctx, conv.UserLo, conv.UserHi, conv.ListingID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return msgs, nil
}

func (uc *GetMessagesUseCase) resolveConversation(ctx context.Context, id string) (*chat.Conversation, error) {
	key := "chat:conv:" + id

	if uc.Cache != nil {
		if raw, err := uc.Cache.Get(ctx, key); err == nil {
			var conv chat.Conversation
			if err := json.Unmarshal([]byte(raw), &conv); err == nil {
				return &conv, nil
			}
		}
	}

	conv, err := uc.Repo.GetConversation(ctx, id)
	if err != nil || conv == nil {
		return conv, err
	}

	if uc.Cache != nil {
		if raw, err := json.Marshal(conv); err == nil {
			// Best effort; a cold cache only costs one extra lookup.
			_ = uc.Cache.Set(ctx, key, string(raw), conversationCacheTTL)
		}
	}
	return conv, nil
}
