package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	"moni-chat/internal/infrastructure/profile/port"
	qport "moni-chat/internal/infrastructure/queue/port"
	"moni-chat/internal/infrastructure/realtime"
	"moni-chat/internal/infrastructure/session"
	"moni-chat/internal/pkg/conversation/application/avatar"
	conversation "moni-chat/internal/pkg/conversation/application/domain"
	"moni-chat/internal/pkg/conversation/application/stream"
	"moni-chat/internal/pkg/conversation/application/usecase"
	"moni-chat/internal/pkg/conversation/persistence/repository/adapter"
)

// ConversationSocketController handles the per-conversation websocket: it
// opens a message stream over the room's history plus live feed, pipes it to
// the client, and accepts message frames back on the same socket.
type ConversationSocketController struct {
	repo            *adapter.PgRoomRepository
	hub             *realtime.Hub
	queue           qport.Client
	sendUC          *usecase.SendMessageUseCase
	inflightTimeout time.Duration
}

func NewConversationSocketController(pool *pgxpool.Pool, dir port.Directory, hub *realtime.Hub, queue qport.Client) *ConversationSocketController {
	repo := adapter.NewPgRoomRepository(pool)
	return &ConversationSocketController{
		repo:            repo,
		hub:             hub,
		queue:           queue,
		sendUC:          usecase.NewSendMessageUseCase(repo, avatar.NewDefaultChain(repo, dir)),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The mobile app is the only client; tighten when a web build ships.
		return true
	},
}

type inboundFrame struct {
	Type            string `json:"type"`
	Text            string `json:"text,omitempty"`
	SenderAvatarURL string `json:"sender_avatar,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type outboundMessage struct {
	Type    string         `json:"type"`
	Message messagePayload `json:"message"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the request and serves the stream until either side closes.
func (ctl *ConversationSocketController) Handle() gin.HandlerFunc {
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

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := realtime.NewConnection(self, ws)
		conn.Start()
		defer conn.Close(websocket.CloseNormalClosure, "session closed")

		st, err := stream.Open(c.Request.Context(), conversationID, ctl.repo, ctl.hub)
		if err != nil {
			ctl.replyError(conn, "stream_error", "failed to open conversation stream")
			return
		}
		defer st.Close()

		ws.SetReadLimit(1 << 16)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ack := ackFrame{Type: "subscribed", ConversationID: conversationID}
		if payload, err := json.Marshal(ack); err == nil {
			_ = conn.Send(payload)
		}

		go ctl.pump(st, conn)

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "message":
				ctl.handleMessage(c.Request.Context(), conn, conversationID, self, frame)
			case "close":
				return
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

// pump forwards the stream to the socket, oldest first, then live appends in
// order. It tracks the previous message so the client gets the date separator
// flags precomputed.
func (ctl *ConversationSocketController) pump(st *stream.Stream, conn *realtime.Connection) {
	var prev *conversation.Message
	for m := range st.Messages() {
		out := outboundMessage{Type: "message", Message: toMessagePayload(m, prev, time.Now())}
		payload, err := json.Marshal(out)
		if err != nil {
			continue
		}
		if err := conn.Send(payload); err != nil {
			return
		}
		prev = &m
	}
	// Stream closed underneath the socket (overflow or shutdown).
	conn.Close(websocket.CloseGoingAway, "stream closed")
}

func (ctl *ConversationSocketController) handleMessage(parent context.Context, conn *realtime.Connection, conversationID, senderID string, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(parent, ctl.inflightTimeout)
	defer cancel()

	msg, err := ctl.sendUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID:  conversationID,
		SenderID:        senderID,
		Text:            frame.Text,
		SenderAvatarURL: frame.SenderAvatarURL,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	// The sender's own stream subscription echoes the message back, so no
	// direct reply is needed here.
	dispatchMessage(parent, ctl.hub, ctl.queue, *msg)
}

func (ctl *ConversationSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrSendFailed), errors.Is(err, usecase.ErrDirectoryLoad):
		ctl.replyError(conn, "internal_error", "message could not be delivered")
	case errors.Is(err, conversation.ErrEmptyMessage):
		ctl.replyError(conn, "empty_message", err.Error())
	case errors.Is(err, conversation.ErrMessageTooLong):
		ctl.replyError(conn, "message_too_long", err.Error())
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ConversationSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{
		Type:  "error",
		Code:  code,
		Error: message,
	}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
