package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	chat "marketchat/internal/pkg/chat/application/domain"
	"marketchat/internal/pkg/chat/application/usecase"
)

// ListConversationsController returns the caller's threads, most recently
// active first.
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(uc *usecase.ListConversationsUseCase) *ListConversationsController {
	return &ListConversationsController{UC: uc}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := CurrentUser(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		convs, err := h.UC.Execute(ctx, usecase.ListConversationsInput{UserID: userID})
		if err != nil {
			mapListError(c, err)
			return
		}

		out := make([]gin.H, 0, len(convs))
		for i := range convs {
			out = append(out, conversationJSON(&convs[i], userID))
		}

		c.JSON(http.StatusOK, gin.H{
			"conversations": out,
			"count":         len(out),
		})
	}
}

// conversationJSON serializes a conversation from the caller's point of view.
func conversationJSON(conv *chat.Conversation, userID string) gin.H {
	return gin.H{
		"id":               conv.ID,
		"participants":     []string{conv.UserLo, conv.UserHi},
		"counterpart_id":   conv.CounterpartOf(userID),
		"listing_id":       conv.ListingID,
		"created_at":       conv.CreatedAt,
		"last_activity_at": conv.LastActivityAt,
	}
}
