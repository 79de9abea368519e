package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"moni-chat/internal/infrastructure/profile/port"
	qport "moni-chat/internal/infrastructure/queue/port"
	"moni-chat/internal/infrastructure/realtime"
	"moni-chat/internal/infrastructure/session"
	"moni-chat/internal/pkg/conversation/application/avatar"
	conversation "moni-chat/internal/pkg/conversation/application/domain"
	"moni-chat/internal/pkg/conversation/application/usecase"
	"moni-chat/internal/pkg/conversation/persistence/repository/adapter"
)

// SendMessageController handles the REST send endpoint. Socket clients send
// through ConversationSocketController instead; both paths share the use case
// and the fan-out.

type SendMessageController struct {
	UC    *usecase.SendMessageUseCase
	Hub   *realtime.Hub
	Queue qport.Client
}

func NewSendMessageController(pool *pgxpool.Pool, dir port.Directory, hub *realtime.Hub, queue qport.Client) *SendMessageController {
	repo := adapter.NewPgRoomRepository(pool)
	uc := usecase.NewSendMessageUseCase(repo, avatar.NewDefaultChain(repo, dir))
	return &SendMessageController{UC: uc, Hub: hub, Queue: queue}
}

type sendMessageRequest struct {
	Text            string `json:"text" binding:"required"`
	SenderAvatarURL string `json:"sender_avatar,omitempty"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		self, ok := session.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session identity"})
			return
		}

		conversationID := c.Param("conversationId")
		a, b, valid := conversation.ParticipantsOf(conversationID)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": conversation.ErrInvalidParticipants.Error()})
			return
		}
		if self != a && self != b {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant in this conversation"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID:  conversationID,
			SenderID:        self,
			Text:            req.Text,
			SenderAvatarURL: req.SenderAvatarURL,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		dispatchMessage(c.Request.Context(), h.Hub, h.Queue, *msg)

		c.JSON(http.StatusCreated, toMessagePayload(*msg, nil, time.Now()))
	}
}
