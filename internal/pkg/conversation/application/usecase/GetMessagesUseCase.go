package usecase

import (
	"context"
	"fmt"

	conversation "moni-chat/internal/pkg/conversation/application/domain"
	repository "moni-chat/internal/pkg/conversation/persistence/repository/port"
)

// GetMessagesInput wraps the conversation whose history is wanted.
type GetMessagesInput struct {
	ConversationID string
}

// GetMessagesUseCase fetches the full ordered history of one conversation,
// oldest first, for the initial render before the live stream takes over.
type GetMessagesUseCase struct {
	Repo repository.RoomRepository
}

func NewGetMessagesUseCase(repo repository.RoomRepository) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) ([]conversation.Message, error) {
	if _, _, ok := conversation.ParticipantsOf(in.ConversationID); !ok {
		return nil, conversation.ErrInvalidParticipants
	}
	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryLoad, err)
	}
	return msgs, nil
}
