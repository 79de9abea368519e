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

// ListConversationsController handles the conversation directory endpoint.
// One controller per endpoint

type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(pool *pgxpool.Pool, dir port.Directory) *ListConversationsController {
	repo := adapter.NewPgRoomRepository(pool)
	uc := usecase.NewListConversationsUseCase(repo, avatar.NewDefaultChain(repo, dir))
	return &ListConversationsController{UC: uc}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		self, ok := session.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session identity"})
			return
		}

		// Wider than the usual 3s: the directory may fan out to the profile
		// backend for rooms with no cached avatar.
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		summaries, err := h.UC.Execute(ctx, usecase.ListConversationsInput{SelfID: self})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		now := time.Now()
		payloads := make([]summaryPayload, 0, len(summaries))
		for _, s := range summaries {
			payloads = append(payloads, toSummaryPayload(s, now))
		}

		c.JSON(http.StatusOK, gin.H{"conversations": payloads})
	}
}
