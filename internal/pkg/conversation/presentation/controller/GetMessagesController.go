package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"moni-chat/internal/infrastructure/session"
	conversation "moni-chat/internal/pkg/conversation/application/domain"
	"moni-chat/internal/pkg/conversation/application/usecase"
	"moni-chat/internal/pkg/conversation/persistence/repository/adapter"
)

// GetMessagesController handles the history read endpoint.
// One controller per endpoint

type GetMessagesController struct {
	UC *usecase.GetMessagesUseCase
}

func NewGetMessagesController(pool *pgxpool.Pool) *GetMessagesController {
	repo := adapter.NewPgRoomRepository(pool)
	uc := usecase.NewGetMessagesUseCase(repo)
	return &GetMessagesController{UC: uc}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		self, ok := session.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session identity"})
			return
		}

		conversationID := c.Param("conversationId")
		if a, b, valid := conversation.ParticipantsOf(conversationID); valid && self != a && self != b {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant in this conversation"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetMessagesInput{
			ConversationID: conversationID,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		now := time.Now()
		payloads := make([]messagePayload, 0, len(msgs))
		for i := range msgs {
			if i == 0 {
				payloads = append(payloads, toMessagePayload(msgs[i], nil, now))
				continue
			}
			payloads = append(payloads, toMessagePayload(msgs[i], &msgs[i-1], now))
		}

		c.JSON(http.StatusOK, gin.H{"messages": payloads})
	}
}
