package task

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	qport "moni-chat/internal/infrastructure/queue/port"
)

// NotifyMessageTaskType is the queue task name for dispatching a new-message
// notification to the receiving participant.
const NotifyMessageTaskType = "conversation:notify_message"

// notifyPreviewLimit caps how much of the message text travels in the
// notification payload.
const notifyPreviewLimit = 80

// NotifyMessagePayload is the JSON payload transported via the queue. Kept
// decoupled from domain types to avoid coupling JSON tags to entities.
type NotifyMessagePayload struct {
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	Preview        string    `json:"preview"`
	SentAt         time.Time `json:"sentAt"`
}

// NewNotifyMessageTask builds the queue task for a delivered message,
// truncating the preview.
func NewNotifyMessageTask(p NotifyMessagePayload) (qport.Task, error) {
	if runes := []rune(p.Preview); len(runes) > notifyPreviewLimit {
		p.Preview = string(runes[:notifyPreviewLimit])
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return qport.Task{}, err
	}
	return qport.Task{Type: NotifyMessageTaskType, Payload: payload}, nil
}

// RegisterNotifyMessageTask binds the handler to the server. The actual push
// provider lives outside this service; the handler records the dispatch so
// the provider integration can pick it up from the log pipeline.
func RegisterNotifyMessageTask(srv qport.Server) {
	srv.Register(NotifyMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p NotifyMessagePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying will not help
			return err
		}
		slog.InfoContext(ctx, "message notification dispatched",
			"conversation_id", p.ConversationID,
			"receiver_id", p.ReceiverID,
			"sender_id", p.SenderID,
			"sent_at", p.SentAt,
		)
		return nil
	})
}
