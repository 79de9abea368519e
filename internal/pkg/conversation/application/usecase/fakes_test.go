package usecase

import (
	"context"
	"fmt"
	"time"

	conversation "moni-chat/internal/pkg/conversation/application/domain"
)

// memRepo is an in-memory room repository for use case tests. Messages are
// held ascending by append order; SentAt is assigned from a deterministic
// clock so ordering assertions are stable.
type memRepo struct {
	rooms map[string]conversation.Room
	msgs  map[string][]conversation.Message

	appendCalls int
	upsertCalls int

	listErr   error
	getErr    error
	upsertErr error
	appendErr error
	recentErr error
}

var memClock = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func newMemRepo() *memRepo {
	return &memRepo{
		rooms: make(map[string]conversation.Room),
		msgs:  make(map[string][]conversation.Message),
	}
}

func (r *memRepo) ListRooms(context.Context) ([]conversation.Room, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]conversation.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out, nil
}

func (r *memRepo) GetRoom(_ context.Context, id string) (*conversation.Room, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	room, ok := r.rooms[id]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

func (r *memRepo) UpsertRoom(_ context.Context, room conversation.Room) error {
	r.upsertCalls++
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if existing, ok := r.rooms[room.ID]; ok && room.ReceiverAvatarURL == "" {
		room.ReceiverAvatarURL = existing.ReceiverAvatarURL
	}
	r.rooms[room.ID] = room
	return nil
}

func (r *memRepo) RecentMessages(_ context.Context, id string, limit int) ([]conversation.Message, error) {
	if r.recentErr != nil {
		return nil, r.recentErr
	}
	asc := r.msgs[id]
	out := make([]conversation.Message, 0, limit)
	for i := len(asc) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, asc[i])
	}
	return out, nil
}

func (r *memRepo) ListMessages(_ context.Context, id string) ([]conversation.Message, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]conversation.Message(nil), r.msgs[id]...), nil
}

func (r *memRepo) AppendMessage(_ context.Context, m conversation.Message) (conversation.Message, error) {
	r.appendCalls++
	if r.appendErr != nil {
		return conversation.Message{}, r.appendErr
	}
	m.ID = fmt.Sprintf("m%d", r.appendCalls)
	m.SentAt = memClock.Add(time.Duration(len(r.msgs[m.ConversationID])) * time.Minute)
	r.msgs[m.ConversationID] = append(r.msgs[m.ConversationID], m)
	return m, nil
}

// seed stores a message directly, bypassing validation.
func (r *memRepo) seed(conversationID, senderID, text, avatarURL string, at time.Time) {
	r.msgs[conversationID] = append(r.msgs[conversationID], conversation.Message{
		ID:              fmt.Sprintf("seed%d", len(r.msgs[conversationID])+1),
		ConversationID:  conversationID,
		SenderID:        senderID,
		Text:            text,
		SenderAvatarURL: avatarURL,
		SentAt:          at,
	})
}

type stubDirectory struct {
	avatars map[string]string
	err     error
	calls   int
}

func (d *stubDirectory) AvatarURL(_ context.Context, userID string) (string, error) {
	d.calls++
	if d.err != nil {
		return "", d.err
	}
	return d.avatars[userID], nil
}
