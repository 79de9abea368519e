package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	conversation "moni-chat/internal/pkg/conversation/application/domain"
	repository "moni-chat/internal/pkg/conversation/persistence/repository/port"
)

// PgRoomRepository persists rooms and messages in PostgreSQL.
//
// Expected schema:
//
//	CREATE SCHEMA IF NOT EXISTS chat;
//	CREATE TABLE chat.room (
//	    id              text PRIMARY KEY,
//	    participants    text[] NOT NULL,
//	    created_at      timestamptz NOT NULL,
//	    receiver_avatar text
//	);
//	CREATE TABLE chat.message (
//	    id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
//	    conversation_id text NOT NULL REFERENCES chat.room (id),
//	    sender_id       text NOT NULL,
//	    body            text NOT NULL,
//	    avatar_url      text,
//	    created_at      timestamptz NOT NULL DEFAULT now()
//	);
//	CREATE INDEX ON chat.message (conversation_id, created_at);
type PgRoomRepository struct {
	pool *pgxpool.Pool
}

func NewPgRoomRepository(pool *pgxpool.Pool) *PgRoomRepository {
	return &PgRoomRepository{pool: pool}
}

// Ensure interface compliance at compile time
var _ repository.RoomRepository = (*PgRoomRepository)(nil)

func (r *PgRoomRepository) ListRooms(ctx context.Context) ([]conversation.Room, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgRoomRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, participants, created_at, COALESCE(receiver_avatar, '')
		FROM chat.room
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []conversation.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *PgRoomRepository) GetRoom(ctx context.Context, conversationID string) (*conversation.Room, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgRoomRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, participants, created_at, COALESCE(receiver_avatar, '')
		FROM chat.room
		WHERE id = $1
	`, conversationID)

	room, err := scanRoom(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// UpsertRoom creates the room or merges into the existing document. The merge
// never clears a cached receiver avatar: an upsert carrying no avatar keeps
// whatever the other participant's client already stored.
func (r *PgRoomRepository) UpsertRoom(ctx context.Context, room conversation.Room) error {
	if r == nil || r.pool == nil {
		return errors.New("PgRoomRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat.room (id, participants, created_at, receiver_avatar)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (id)
		DO UPDATE SET receiver_avatar = COALESCE(NULLIF(EXCLUDED.receiver_avatar, ''), chat.room.receiver_avatar)
	`, room.ID, room.Participants[:], room.CreatedAt, room.ReceiverAvatarURL)
	return err
}

func (r *PgRoomRepository) RecentMessages(ctx context.Context, conversationID string, limit int) ([]conversation.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.queryMessages(ctx, `
		SELECT id::text, conversation_id, sender_id, body, COALESCE(avatar_url, ''), created_at
		FROM chat.message
		WHERE conversation_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, conversationID, limit)
}

func (r *PgRoomRepository) ListMessages(ctx context.Context, conversationID string) ([]conversation.Message, error) {
	return r.queryMessages(ctx, `
		SELECT id::text, conversation_id, sender_id, body, COALESCE(avatar_url, ''), created_at
		FROM chat.message
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`, conversationID)
}

// AppendMessage inserts the message and returns it with the store-assigned id
// and timestamp. Ordering within a conversation follows created_at, assigned
// here by the database clock.
func (r *PgRoomRepository) AppendMessage(ctx context.Context, m conversation.Message) (conversation.Message, error) {
	if r == nil || r.pool == nil {
		return conversation.Message{}, errors.New("PgRoomRepository: nil pool")
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, body, avatar_url)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id::text, created_at
	`, m.ConversationID, m.SenderID, m.Text, m.SenderAvatarURL).Scan(&m.ID, &m.SentAt)
	if err != nil {
		return conversation.Message{}, err
	}
	return m, nil
}

func (r *PgRoomRepository) queryMessages(ctx context.Context, sql string, args ...any) ([]conversation.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgRoomRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []conversation.Message
	for rows.Next() {
		var m conversation.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.SenderAvatarURL, &m.SentAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func scanRoom(row pgx.Row) (conversation.Room, error) {
	var (
		room         conversation.Room
		participants []string
	)
	if err := row.Scan(&room.ID, &participants, &room.CreatedAt, &room.ReceiverAvatarURL); err != nil {
		return conversation.Room{}, err
	}
	if len(participants) == 2 {
		room.Participants = [2]string{participants[0], participants[1]}
	}
	return room, nil
}
