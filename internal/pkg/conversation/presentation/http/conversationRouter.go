package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	pport "moni-chat/internal/infrastructure/profile/port"
	qport "moni-chat/internal/infrastructure/queue/port"
	"moni-chat/internal/infrastructure/realtime"
	"moni-chat/internal/infrastructure/session"
	"moni-chat/internal/pkg/conversation/presentation/controller"
)

// RegisterRoutes registers conversation endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, dir pport.Directory, hub *realtime.Hub, client qport.Client) {
	listCtl := controller.NewListConversationsController(pool, dir)
	startCtl := controller.NewStartConversationController(pool, dir)
	sendCtl := controller.NewSendMessageController(pool, dir, hub, client)
	getCtl := controller.NewGetMessagesController(pool)
	socketCtl := controller.NewConversationSocketController(pool, dir, hub, client)

	auth := g.Group("", session.Middleware())

	// GET /api/v1/conversations -> the caller's conversation directory
	auth.GET("/conversations", listCtl.Handle())

	// POST /api/v1/conversations -> start (or converge on) a conversation
	auth.POST("/conversations", startCtl.Handle())

	// GET /api/v1/conversations/:conversationId/messages -> ordered history
	auth.GET("/conversations/:conversationId/messages", getCtl.Handle())

	// POST /api/v1/conversations/:conversationId/messages -> send a message
	auth.POST("/conversations/:conversationId/messages", sendCtl.Handle())

	// GET /api/v1/conversations/:conversationId/ws -> live message stream
	auth.GET("/conversations/:conversationId/ws", socketCtl.Handle())
}
