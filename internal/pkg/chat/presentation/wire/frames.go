package wire

import (
	"encoding/json"
	"time"

	chat "marketchat/internal/pkg/chat/application/domain"
)

// Frame types of the duplex channel protocol.
const (
	FrameAuth        = "auth"
	FrameAuthSuccess = "auth_success"
	FrameSendMessage = "send_message"
	FrameMessageSent = "message_sent"
	FrameNewMessage  = "new_message"
	FrameError       = "error"
)

// Inbound is the superset of client frames; Type selects which fields matter.
type Inbound struct {
	Type       string  `json:"type"`
	UserID     string  `json:"userId,omitempty"`
	ReceiverID string  `json:"receiverId,omitempty"`
	ListingID  *string `json:"listingId,omitempty"`
	Content    string  `json:"content,omitempty"`
}

// MessagePayload is the message shape pushed over the channel.
type MessagePayload struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	ListingID  *string   `json:"listingId,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AuthSuccessFrame acknowledges an auth frame.
type AuthSuccessFrame struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// MessageFrame carries a persisted message, as message_sent to the sender or
// new_message to the receiver.
type MessageFrame struct {
	Type    string         `json:"type"`
	Message MessagePayload `json:"message"`
}

// ErrorFrame reports a rejected or malformed frame on the same channel.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ToPayload maps a domain message onto the wire shape.
func ToPayload(m chat.Message) MessagePayload {
	return MessagePayload{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		ListingID:  m.ListingID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

// EncodeAuthSuccess marshals the auth acknowledgement.
func EncodeAuthSuccess(userID string) ([]byte, error) {
	return json.Marshal(AuthSuccessFrame{Type: FrameAuthSuccess, UserID: userID})
}

// EncodeMessage marshals a message frame of the given type.
func EncodeMessage(frameType string, m chat.Message) ([]byte, error) {
	return json.Marshal(MessageFrame{Type: frameType, Message: ToPayload(m)})
}

// EncodeError marshals an error frame.
func EncodeError(message string) ([]byte, error) {
	return json.Marshal(ErrorFrame{Type: FrameError, Message: message})
}
