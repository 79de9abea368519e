package usecase

import (
	"context"
	"fmt"
	"time"

	"moni-chat/internal/pkg/conversation/application/avatar"
	conversation "moni-chat/internal/pkg/conversation/application/domain"
	repository "moni-chat/internal/pkg/conversation/persistence/repository/port"
)

// StartConversationInput carries the two parties of a new conversation.
// OtherID is the raw identifier typed by the user; it gets normalized here.
type StartConversationInput struct {
	SelfID  string
	OtherID string
}

// StartConversationUseCase provisions the canonical room for a pair of users.
// Creation is an idempotent merge: starting the same conversation twice, or
// both parties starting it concurrently, converges on one room without
// clobbering fields the other write set.
type StartConversationUseCase struct {
	Repo    repository.RoomRepository
	Avatars avatar.Chain
}

func NewStartConversationUseCase(repo repository.RoomRepository, avatars avatar.Chain) *StartConversationUseCase {
	return &StartConversationUseCase{Repo: repo, Avatars: avatars}
}

// Execute resolves the other participant's avatar, upserts the room with that
// avatar cached, and returns a summary with empty last-message fields. An
// existing room is read first so a repeated start reuses its cached avatar and
// creation time instead of resolving from scratch.
func (uc *StartConversationUseCase) Execute(ctx context.Context, in StartConversationInput) (*conversation.ConversationSummary, error) {
	self := conversation.NormalizeUserID(in.SelfID)
	if self == "" {
		return nil, conversation.ErrMissingIdentity
	}

	room, err := conversation.NewRoom(self, in.OtherID)
	if err != nil {
		return nil, err
	}
	other, _ := room.Other(self)

	existing, err := uc.Repo.GetRoom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryLoad, err)
	}

	room.CreatedAt = time.Now().UTC()
	if existing != nil && !existing.CreatedAt.IsZero() {
		room.CreatedAt = existing.CreatedAt
	}
	room.ReceiverAvatarURL = uc.Avatars.Resolve(ctx, avatar.Request{
		ConversationID: room.ID,
		Participant:    other,
		Self:           self,
		Room:           existing,
	})

	if err := uc.Repo.UpsertRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryLoad, err)
	}

	return &conversation.ConversationSummary{
		ConversationID:   room.ID,
		OtherParticipant: other,
		AvatarURL:        room.ReceiverAvatarURL,
	}, nil
}
