package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"moni-chat/internal/infrastructure/profile/port"
	"moni-chat/internal/infrastructure/session"
	"moni-chat/internal/pkg/conversation/application/avatar"
	"moni-chat/internal/pkg/conversation/application/usecase"
	"moni-chat/internal/pkg/conversation/persistence/repository/adapter"
)

// StartConversationController handles conversation creation.
// One controller per endpoint

type StartConversationController struct {
	UC *usecase.StartConversationUseCase
}

func NewStartConversationController(pool *pgxpool.Pool, dir port.Directory) *StartConversationController {
	repo := adapter.NewPgRoomRepository(pool)
	uc := usecase.NewStartConversationUseCase(repo, avatar.NewDefaultChain(repo, dir))
	return &StartConversationController{UC: uc}
}

type startConversationRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
}

func (h *StartConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		self, ok := session.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session identity"})
			return
		}

		var req startConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		summary, err := h.UC.Execute(ctx, usecase.StartConversationInput{
			SelfID:  self,
			OtherID: req.ReceiverID,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, toSummaryPayload(*summary, time.Now()))
	}
}
