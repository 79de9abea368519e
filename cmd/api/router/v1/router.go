package v1

import (
	pport "moni-chat/internal/infrastructure/profile/port"
	qport "moni-chat/internal/infrastructure/queue/port"
	"moni-chat/internal/infrastructure/realtime"
	httpHandler "moni-chat/internal/pkg/conversation/presentation/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, dir pport.Directory, hub *realtime.Hub, client qport.Client) {
	v1 := r.Group("/api/v1")
	// Pass the shared infrastructure down to the HTTP layer
	httpHandler.RegisterRoutes(v1, pool, dir, hub, client)
}
