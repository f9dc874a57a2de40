package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "marketchat/internal/pkg/chat/application/domain"
	repository "marketchat/internal/pkg/chat/persistence/repository/port"
)

// PgChatRepository persists conversations and messages in Postgres via pgx.
// See db/schema.sql for the backing tables; the unique expression index on
// (user_lo, user_hi, coalesce(listing_id, '')) is what FindOrCreateConversation
// relies on.
type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

const conversationColumns = "id::text, user_lo, user_hi, listing_id, created_at, last_activity_at"

func (r *PgChatRepository) FindConversation(ctx context.Context, userA, userB string, listingID *string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	lo, hi := chat.NormalizePair(userA, userB)
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE user_lo = $1 AND user_hi = $2 AND COALESCE(listing_id, '') = COALESCE($3, '')
	`, lo, hi, chat.NormalizeScope(listingID))

	conv, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *PgChatRepository) CreateConversation(ctx context.Context, userA, userB string, listingID *string, at time.Time) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgChatRepository: nil pool")
	}
	lo, hi := chat.NormalizePair(userA, userB)
	row := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (user_lo, user_hi, listing_id, created_at, last_activity_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING `+conversationColumns+`
	`, lo, hi, chat.NormalizeScope(listingID), at.UTC())
	return scanConversation(row)
}

// FindOrCreateConversation is a single upsert: either path returns the
// canonical row and advances last_activity_at, so concurrent first contacts
// for the same pair/scope converge on one conversation.
func (r *PgChatRepository) FindOrCreateConversation(ctx context.Context, userA, userB string, listingID *string, at time.Time) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgChatRepository: nil pool")
	}
	lo, hi := chat.NormalizePair(userA, userB)
	row := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (user_lo, user_hi, listing_id, created_at, last_activity_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_lo, user_hi, (COALESCE(listing_id, '')))
		DO UPDATE SET last_activity_at = GREATEST(conversations.last_activity_at, EXCLUDED.last_activity_at)
		RETURNING `+conversationColumns+`
	`, lo, hi, chat.NormalizeScope(listingID), at.UTC())
	return scanConversation(row)
}

func (r *PgChatRepository) GetConversation(ctx context.Context, id string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE id = $1::uuid
	`, id)

	conv, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *PgChatRepository) ListConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE user_lo = $1 OR user_hi = $1
		ORDER BY last_activity_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []chat.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return convs, nil
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, listing_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text
	`, m.SenderID, m.ReceiverID, chat.NormalizeScope(m.ListingID), m.Content, m.CreatedAt).Scan(&id)
	return id, err
}

// ListMessagesByPair joins by unordered participant pair + exact scope rather
// than a conversation foreign key, so messages written before any conversation
// row existed are still retrievable once one exists for that pair/scope.
func (r *PgChatRepository) ListMessagesByPair(ctx context.Context, userA, userB string, listingID *string, limit, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	lo, hi := chat.NormalizePair(userA, userB)
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, sender_id, receiver_id, listing_id, content, created_at
		FROM messages
		WHERE LEAST(sender_id, receiver_id) = $1
		  AND GREATEST(sender_id, receiver_id) = $2
		  AND COALESCE(listing_id, '') = COALESCE($3, '')
		ORDER BY created_at ASC
		LIMIT $4 OFFSET $5
	`, lo, hi, chat.NormalizeScope(listingID), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.ListingID, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func scanConversation(row pgx.Row) (chat.Conversation, error) {
	var conv chat.Conversation
	err := row.Scan(&conv.ID, &conv.UserLo, &conv.UserHi, &conv.ListingID, &conv.CreatedAt, &conv.LastActivityAt)
	return conv, err
}
