package usecase

import (
	"context"
	"fmt"
	"time"

	"moni-chat/internal/pkg/conversation/application/avatar"
	conversation "moni-chat/internal/pkg/conversation/application/domain"
	repository "moni-chat/internal/pkg/conversation/persistence/repository/port"
)

// SendMessageInput carries the data needed to append a message.
// SenderAvatarURL is optional session state; when present it becomes the
// snapshot without consulting the store or the profile backend.
type SendMessageInput struct {
	ConversationID  string
	SenderID        string
	Text            string
	SenderAvatarURL string
}

// SendMessageUseCase validates, ensures the room document exists and appends
// the message. There is no optimistic local state: a message exists once the
// store confirms the append, or not at all.
type SendMessageUseCase struct {
	Repo    repository.RoomRepository
	Avatars avatar.Chain
}

func NewSendMessageUseCase(repo repository.RoomRepository, avatars avatar.Chain) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Avatars: avatars}
}

// Execute appends a message to the conversation. Validation failures are
// returned before any store interaction. The room upsert before the append
// covers conversations reached through a deep link that have no room document
// yet; it is a merge, so racing with the other participant is harmless.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*conversation.Message, error) {
	msg, err := conversation.NewMessage(in.ConversationID, in.SenderID, in.Text, in.SenderAvatarURL)
	if err != nil {
		return nil, err
	}

	room, err := uc.ensureRoom(ctx, msg.ConversationID)
	if err != nil {
		return nil, err
	}

	msg.SenderAvatarURL = uc.Avatars.Resolve(ctx, avatar.Request{
		ConversationID: msg.ConversationID,
		Participant:    msg.SenderID,
		Self:           msg.SenderID,
		Explicit:       in.SenderAvatarURL,
		Room:           room,
	})

	saved, err := uc.Repo.AppendMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return &saved, nil
}

// ensureRoom makes sure the room document exists before the append and
// returns it for the avatar chain. Upserting only when the read came back
// empty keeps the common path to a single read.
func (uc *SendMessageUseCase) ensureRoom(ctx context.Context, conversationID string) (*conversation.Room, error) {
	existing, err := uc.Repo.GetRoom(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if existing != nil {
		return existing, nil
	}

	a, b, ok := conversation.ParticipantsOf(conversationID)
	if !ok {
		return nil, conversation.ErrInvalidParticipants
	}
	room := conversation.Room{
		ID:           conversationID,
		Participants: [2]string{a, b},
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.Repo.UpsertRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return &room, nil
}
