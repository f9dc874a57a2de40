package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketchat/internal/pkg/chat/application/usecase"
)

// ResolveConversationController handles the convenience path keyed by
// counterpart identity + listing scope, finding or creating the thread.
type ResolveConversationController struct {
	UC *usecase.ResolveConversationUseCase
}

func NewResolveConversationController(uc *usecase.ResolveConversationUseCase) *ResolveConversationController {
	return &ResolveConversationController{UC: uc}
}

func (h *ResolveConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := CurrentUser(c)
		counterpartID := c.Param("userId")

		var listingID *string
		if v := c.Query("listing_id"); v != "" {
			listingID = &v
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.ResolveConversationInput{
			UserID:        userID,
			CounterpartID: counterpartID,
			ListingID:     listingID,
		})
		if err != nil {
			mapListError(c, err)
			return
		}

		c.JSON(http.StatusOK, conversationJSON(conv, userID))
	}
}
