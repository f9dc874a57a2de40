package repository

import (
	"context"
	"time"

	chat "marketchat/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence for conversations and the message log.
//
// FindConversation returns (nil, nil) when no row matches; an unknown id in
// GetConversation behaves the same way. FindOrCreateConversation is the atomic
// upsert the delivery pipeline uses: it resolves the canonical row for the
// normalized pair + scope, creating it if absent, and advances
// last_activity_at to at in the same statement. Find and Create remain
// available as the unfused steps.
type ChatRepository interface {
	FindConversation(ctx context.Context, userA, userB string, listingID *string) (*chat.Conversation, error)
	CreateConversation(ctx context.Context, userA, userB string, listingID *string, at time.Time) (chat.Conversation, error)
	FindOrCreateConversation(ctx context.Context, userA, userB string, listingID *string, at time.Time) (chat.Conversation, error)
	GetConversation(ctx context.Context, id string) (*chat.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error)

	SaveMessage(ctx context.Context, m chat.Message) (string, error)
	ListMessagesByPair(ctx context.Context, userA, userB string, listingID *string, limit, offset int) ([]chat.Message, error)
}
