package avatar

import (
	"context"

	profileport "moni-chat/internal/infrastructure/profile/port"
	conversation "moni-chat/internal/pkg/conversation/application/domain"
	repository "moni-chat/internal/pkg/conversation/persistence/repository/port"
)

// historyScanLimit bounds how many of the newest messages the history source
// inspects for a snapshot avatar.
const historyScanLimit = 10

// Explicit returns the avatar handed through by the caller, if any.
type Explicit struct{}

func (Explicit) Resolve(_ context.Context, req Request) (string, error) {
	return req.Explicit, nil
}

// CachedRoom returns the receiver avatar cached on the room document. It only
// applies when the wanted participant is not the requesting user, since the
// room caches the avatar of the party the creator was chatting with.
type CachedRoom struct{}

func (CachedRoom) Resolve(_ context.Context, req Request) (string, error) {
	if req.Room == nil || req.Participant == req.Self {
		return "", nil
	}
	return req.Room.ReceiverAvatarURL, nil
}

// History scans the newest messages of the conversation for a snapshot avatar
// left by the participant. A participant who has sent anything recently costs
// no extra network round trip.
type History struct {
	Repo  repository.RoomRepository
	Limit int
}

func (h History) Resolve(ctx context.Context, req Request) (string, error) {
	if h.Repo == nil || req.ConversationID == "" {
		return "", nil
	}
	limit := h.Limit
	if limit <= 0 {
		limit = historyScanLimit
	}
	msgs, err := h.Repo.RecentMessages(ctx, req.ConversationID, limit)
	if err != nil {
		return "", err
	}
	for _, m := range msgs {
		if conversation.NormalizeUserID(m.SenderID) == req.Participant && m.SenderAvatarURL != "" {
			return m.SenderAvatarURL, nil
		}
	}
	return "", nil
}

// Remote asks the profile backend. Failures (network, unknown user) fall
// through to the next source.
type Remote struct {
	Directory profileport.Directory
}

func (r Remote) Resolve(ctx context.Context, req Request) (string, error) {
	if r.Directory == nil || req.Participant == "" {
		return "", nil
	}
	return r.Directory.AvatarURL(ctx, req.Participant)
}
