package usecase

import (
	"context"
	"fmt"

	"moni-chat/internal/pkg/conversation/application/avatar"
	conversation "moni-chat/internal/pkg/conversation/application/domain"
	repository "moni-chat/internal/pkg/conversation/persistence/repository/port"
)

// previewScanLimit is how many of the newest messages are read per room to
// compute the preview and feed the avatar history scan. One list read plus one
// bounded message read per matching room; the fan-out is O(rooms).
const previewScanLimit = 10

// ListConversationsInput identifies the user whose directory is wanted.
type ListConversationsInput struct {
	SelfID string
}

// ListConversationsUseCase builds the conversation directory: every room the
// user participates in, with preview text, preview time and the other
// participant's resolved avatar, sorted by recency.
type ListConversationsUseCase struct {
	Repo    repository.RoomRepository
	Avatars avatar.Chain
}

func NewListConversationsUseCase(repo repository.RoomRepository, avatars avatar.Chain) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Avatars: avatars}
}

// Execute scans all rooms and returns the user's summaries ordered by
// last-message time descending, rooms without messages last. A user with no
// rooms gets an empty slice, not an error.
func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]conversation.ConversationSummary, error) {
	self := conversation.NormalizeUserID(in.SelfID)
	if self == "" {
		return nil, conversation.ErrMissingIdentity
	}

	rooms, err := uc.Repo.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryLoad, err)
	}

	summaries := make([]conversation.ConversationSummary, 0, len(rooms))
	for _, room := range rooms {
		other, ok := room.Other(self)
		if !ok {
			continue
		}

		msgs, err := uc.Repo.RecentMessages(ctx, room.ID, previewScanLimit)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDirectoryLoad, err)
		}

		s := conversation.ConversationSummary{
			ConversationID:   room.ID,
			OtherParticipant: other,
		}
		if len(msgs) > 0 {
			s.LastMessageText = msgs[0].Text
			if !msgs[0].SentAt.IsZero() {
				t := msgs[0].SentAt
				s.LastMessageTime = &t
			}
		}

		s.AvatarURL = uc.Avatars.Resolve(ctx, avatar.Request{
			ConversationID: room.ID,
			Participant:    other,
			Self:           self,
			Room:           &room,
		})

		summaries = append(summaries, s)
	}

	conversation.SortSummaries(summaries)
	return summaries, nil
}
