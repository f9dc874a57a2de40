package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	qport "marketchat/internal/infrastructure/queue/port"
	"marketchat/internal/pkg/chat/application/task"
)

// EnqueueMessageController handles the async ingest variant: the payload is
// queued and the in-process worker runs the same persist-then-push pipeline.
type EnqueueMessageController struct {
	Q qport.Client
}

func NewEnqueueMessageController(client qport.Client) *EnqueueMessageController {
	return &EnqueueMessageController{Q: client}
}

func (h *EnqueueMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Q == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queue is not configured"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		payload := task.SendMessageTaskPayload{
			SenderID:   CurrentUser(c),
			ReceiverID: req.ReceiverID,
			ListingID:  req.ListingID,
			Content:    req.Content,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode task payload"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		opts := qport.EnqueueOption{Queue: "chat", MaxRetry: 20}
		id, err := h.Q.Enqueue(ctx, qport.Task{Type: task.SendMessageTaskType, Payload: b}, opts)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to enqueue message"})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":      "queued",
			"task_id":     id,
			"sender_id":   payload.SenderID,
			"receiver_id": payload.ReceiverID,
		})
	}
}
