package chat

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentLength caps message content, counted in runes after trimming.
const MaxContentLength = 4000

var (
	ErrMissingReceiver = errors.New("chat: receiver_id is required")
	ErrMissingSender   = errors.New("chat: sender_id is required")
	ErrSelfMessage     = errors.New("chat: sender and receiver must differ")
	ErrEmptyContent    = errors.New("chat: content must not be empty")
	ErrContentTooLong  = errors.New("chat: content exceeds maximum length")
)

// Message is an immutable entry in the conversation log. Once persisted it is
// never mutated; read/unread state lives elsewhere.
type Message struct {
	ID         string    `db:"id"`
	SenderID   string    `db:"sender_id"`
	ReceiverID string    `db:"receiver_id"`
	ListingID  *string   `db:"listing_id"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
}

// NewMessage validates and normalizes a message before it reaches the store:
// trimmed non-empty content within the cap, distinct sender and receiver, and
// a normalized listing scope. The timestamp is server-assigned here.
func NewMessage(senderID, receiverID string, listingID *string, content string) (*Message, error) {
	if senderID == "" {
		return nil, ErrMissingSender
	}
	if receiverID == "" {
		return nil, ErrMissingReceiver
	}
	if senderID == receiverID {
		return nil, ErrSelfMessage
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return nil, ErrContentTooLong
	}

	return &Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		ListingID:  NormalizeScope(listingID),
		Content:    trimmed,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// IsValidationError reports whether err is one of the pre-persistence
// rejection reasons.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingReceiver) ||
		errors.Is(err, ErrMissingSender) ||
		errors.Is(err, ErrSelfMessage) ||
		errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrContentTooLong)
}
