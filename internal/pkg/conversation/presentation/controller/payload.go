package controller

import (
	"context"
	"log/slog"
	"time"

	qport "moni-chat/internal/infrastructure/queue/port"
	"moni-chat/internal/infrastructure/realtime"
	conversation "moni-chat/internal/pkg/conversation/application/domain"
	"moni-chat/internal/pkg/conversation/application/task"
)

// messagePayload is the wire shape of one message, carrying the presentation
// labels so the mobile client renders day buckets exactly as the directory
// does.
type messagePayload struct {
	ID                string    `json:"id"`
	ConversationID    string    `json:"conversation_id"`
	SenderID          string    `json:"sender_id"`
	Text              string    `json:"text"`
	SentAt            time.Time `json:"sent_at"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	DayLabel          string    `json:"day_label"`
	TimeLabel         string    `json:"time_label"`
	ShowDateSeparator bool      `json:"show_date_separator"`
}

// toMessagePayload renders m for the client. prev is the message shown right
// before m, nil when m opens the list.
func toMessagePayload(m conversation.Message, prev *conversation.Message, now time.Time) messagePayload {
	return messagePayload{
		ID:                m.ID,
		ConversationID:    m.ConversationID,
		SenderID:          m.SenderID,
		Text:              m.Text,
		SentAt:            m.SentAt,
		AvatarURL:         m.SenderAvatarURL,
		DayLabel:          conversation.DayLabel(m.SentAt, now),
		TimeLabel:         conversation.TimeLabel(m.SentAt),
		ShowDateSeparator: conversation.ShouldInsertDateSeparator(prev, m),
	}
}

// summaryPayload is the wire shape of one directory row.
type summaryPayload struct {
	ConversationID  string     `json:"conversation_id"`
	Receiver        string     `json:"receiver_id"`
	AvatarURL       string     `json:"avatar_url"`
	LastMessageText string     `json:"last_message,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	LastDayLabel    string     `json:"last_day_label,omitempty"`
	LastTimeLabel   string     `json:"last_time_label,omitempty"`
}

func toSummaryPayload(s conversation.ConversationSummary, now time.Time) summaryPayload {
	p := summaryPayload{
		ConversationID:  s.ConversationID,
		Receiver:        s.OtherParticipant,
		AvatarURL:       s.AvatarURL,
		LastMessageText: s.LastMessageText,
		LastMessageTime: s.LastMessageTime,
	}
	if s.LastMessageTime != nil {
		p.LastDayLabel = conversation.DayLabel(*s.LastMessageTime, now)
		p.LastTimeLabel = conversation.TimeLabel(*s.LastMessageTime)
	}
	return p
}

// dispatchMessage fans a freshly appended message out: live subscribers get
// it via the hub, the receiving participant gets a notification task. Both
// are best-effort; the message is already durable.
func dispatchMessage(ctx context.Context, hub *realtime.Hub, queue qport.Client, msg conversation.Message) {
	if hub != nil {
		hub.Publish(msg.ConversationID, msg)
	}
	if queue == nil {
		return
	}

	a, b, ok := conversation.ParticipantsOf(msg.ConversationID)
	if !ok {
		return
	}
	receiver := a
	if receiver == msg.SenderID {
		receiver = b
	}

	t, err := task.NewNotifyMessageTask(task.NotifyMessagePayload{
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		ReceiverID:     receiver,
		Preview:        msg.Text,
		SentAt:         msg.SentAt,
	})
	if err != nil {
		slog.WarnContext(ctx, "build notify task failed", "conversation_id", msg.ConversationID, "err", err)
		return
	}
	if _, err := queue.Enqueue(ctx, t, qport.EnqueueOption{Queue: "chat", MaxRetry: 3}); err != nil {
		slog.WarnContext(ctx, "enqueue notify task failed", "conversation_id", msg.ConversationID, "err", err)
	}
}
