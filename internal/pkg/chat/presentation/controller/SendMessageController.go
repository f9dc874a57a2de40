package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	chat "marketchat/internal/pkg/chat/application/domain"
	"marketchat/internal/pkg/chat/application/usecase"
)

// SendMessageController handles the synchronous REST send path. The response
// body is the durably persisted record, so the sender always learns whether
// the message was accepted.
type SendMessageController struct {
	UC *usecase.SendMessageUseCase
}

func NewSendMessageController(uc *usecase.SendMessageUseCase) *SendMessageController {
	return &SendMessageController{UC: uc}
}

type sendMessageRequest struct {
	ReceiverID string  `json:"receiver_id" binding:"required"`
	ListingID  *string `json:"listing_id"`
	Content    string  `json:"content"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		in := usecase.SendMessageInput{
			SenderID:   CurrentUser(c),
			ReceiverID: req.ReceiverID,
			ListingID:  req.ListingID,
			Content:    req.Content,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		out, err := h.UC.Execute(ctx, in)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":              out.Message.ID,
			"conversation_id": out.ConversationID,
			"sender_id":       out.Message.SenderID,
			"receiver_id":     out.Message.ReceiverID,
			"listing_id":      out.Message.ListingID,
			"content":         out.Message.Content,
			"created_at":      out.Message.CreatedAt,
			"pushed":          out.Pushed,
		})
	}
}

// mapListError is shared by the read controllers.
func mapListError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, usecase.ErrPersistence) {
		status = http.StatusInternalServerError
	}
	if chat.IsValidationError(err) {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
