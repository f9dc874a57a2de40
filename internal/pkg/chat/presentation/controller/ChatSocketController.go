package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"marketchat/internal/infrastructure/realtime"
	chat "marketchat/internal/pkg/chat/application/domain"
	"marketchat/internal/pkg/chat/application/usecase"
	"marketchat/internal/pkg/chat/presentation/wire"
)

// ChatSocketController owns the websocket endpoint. A channel is attached
// unauthenticated; the only frame it may act on first is auth, which binds the
// identity in the hub and unlocks send_message.
type ChatSocketController struct {
	hub             *realtime.Hub
	sendMessageUC   *usecase.SendMessageUseCase
	log             *zap.Logger
	inflightTimeout time.Duration
}

func NewChatSocketController(hub *realtime.Hub, sendUC *usecase.SendMessageUseCase, log *zap.Logger) *ChatSocketController {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatSocketController{
		hub:             hub,
		sendMessageUC:   sendUC,
		log:             log,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The gateway in front of this service enforces origins.
		return true
	},
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the HTTP connection and processes frames until the client
// disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			ctl.log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		conn := realtime.NewConnection(ws)
		conn.Start()
		defer func() {
			ctl.hub.Remove(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(64 << 10)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.log.Debug("websocket read ended", zap.String("conn", conn.ID), zap.Error(err))
				return
			}

			var frame wire.Inbound
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "invalid payload")
				continue
			}

			switch frame.Type {
			case wire.FrameAuth:
				ctl.handleAuth(conn, frame)
			case wire.FrameSendMessage:
				ctl.handleSend(c, conn, frame)
			default:
				ctl.replyError(conn, "unknown frame type")
			}
		}
	}
}

func (ctl *ChatSocketController) handleAuth(conn *realtime.Connection, frame wire.Inbound) {
	if frame.UserID == "" {
		ctl.replyError(conn, "userId is required")
		return
	}

	ctl.hub.Bind(frame.UserID, conn)

	if payload, err := wire.EncodeAuthSuccess(frame.UserID); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) handleSend(c *gin.Context, conn *realtime.Connection, frame wire.Inbound) {
	senderID := conn.UserID()
	if senderID == "" {
		ctl.replyError(conn, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	// The pipeline pushes new_message to the receiver itself; only the sender
	// ack is written here.
	out, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		SenderID:   senderID,
		ReceiverID: frame.ReceiverID,
		ListingID:  frame.ListingID,
		Content:    frame.Content,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	if payload, err := wire.EncodeMessage(wire.FrameMessageSent, out.Message); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "unexpected persistence error")
	case chat.IsValidationError(err):
		ctl.replyError(conn, err.Error())
	default:
		ctl.replyError(conn, err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, message string) {
	if payload, err := wire.EncodeError(message); err == nil {
		_ = conn.Send(payload)
	}
}
