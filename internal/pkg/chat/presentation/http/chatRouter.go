package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	qport "marketchat/internal/infrastructure/queue/port"
	"marketchat/internal/infrastructure/realtime"
	"marketchat/internal/pkg/chat/application/usecase"
	"marketchat/internal/pkg/chat/presentation/controller"
)

// Deps bundles the constructed use cases and collaborators the chat surface
// needs. Queue may be nil; the async ingest endpoint then answers 503.
type Deps struct {
	Hub                   *realtime.Hub
	SendMessageUC         *usecase.SendMessageUseCase
	GetMessagesUC         *usecase.GetMessagesUseCase
	ListConversationsUC   *usecase.ListConversationsUseCase
	ResolveConversationUC *usecase.ResolveConversationUseCase
	Queue                 qport.Client
	Log                   *zap.Logger
}

// RegisterRoutes mounts the chat endpoints under the given group. The socket
// endpoint stays outside the identity middleware: its authentication is
// in-band via the auth frame.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	socketCtl := controller.NewChatSocketController(d.Hub, d.SendMessageUC, d.Log)
	sendCtl := controller.NewSendMessageController(d.SendMessageUC)
	enqueueCtl := controller.NewEnqueueMessageController(d.Queue)
	getMsgCtl := controller.NewGetMessagesController(d.GetMessagesUC)
	listCtl := controller.NewListConversationsController(d.ListConversationsUC)
	resolveCtl := controller.NewResolveConversationController(d.ResolveConversationUC)

	g.GET("/ws", socketCtl.Handle())

	authed := g.Group("", controller.RequireIdentity())
	authed.GET("/conversations", listCtl.Handle())
	authed.GET("/conversations/with/:userId", resolveCtl.Handle())
	authed.GET("/conversations/:conversationId/messages", getMsgCtl.Handle())
	authed.POST("/messages", sendCtl.Handle())
	authed.POST("/messages/async", enqueueCtl.Handle())
}
