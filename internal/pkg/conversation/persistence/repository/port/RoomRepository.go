package repository

import (
	"context"

	conversation "moni-chat/internal/pkg/conversation/application/domain"
)

// RoomRepository defines persistence operations for conversation rooms and
// their message logs. The store is the single source of truth; use cases are
// stateless readers/writers on top of it.
//
// Semantics adapters must honor:
//   - UpsertRoom merges by id: repeated creation is a no-op and a write that
//     carries no receiver avatar never clears an existing one.
//   - AppendMessage assigns the id and the server-side timestamp; the returned
//     message carries both.
//   - RecentMessages returns newest first, ListMessages oldest first, both
//     strictly ordered by the assigned timestamp.
type RoomRepository interface {
	ListRooms(ctx context.Context) ([]conversation.Room, error)
	GetRoom(ctx context.Context, conversationID string) (*conversation.Room, error)
	UpsertRoom(ctx context.Context, room conversation.Room) error
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]conversation.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]conversation.Message, error)
	AppendMessage(ctx context.Context, m conversation.Message) (conversation.Message, error)
}
