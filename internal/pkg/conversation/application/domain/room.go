package conversation

import "time"

// Room is the persisted metadata document for a two-party conversation,
// distinct from the messages inside it. Rooms are created idempotently on
// first send or on an explicit start action and are never deleted here.
//
// ReceiverAvatarURL caches the avatar of the participant who did not create
// the room, so the directory can skip a profile lookup for fresh rooms.
type Room struct {
	ID                string
	Participants      [2]string
	CreatedAt         time.Time
	ReceiverAvatarURL string
}

// NewRoom derives the canonical room for the pair (a, b). Participants end up
// normalized and sorted, mirroring the id.
func NewRoom(a string, b string) (Room, error) {
	id, err := DeriveConversationID(a, b)
	if err != nil {
		return Room{}, err
	}
	pa, pb, _ := ParticipantsOf(id)
	return Room{ID: id, Participants: [2]string{pa, pb}}, nil
}

// members returns the participant pair, falling back to the id split when the
// persisted document predates the participants field.
func (r Room) members() (string, string, bool) {
	if r.Participants[0] != "" && r.Participants[1] != "" {
		return r.Participants[0], r.Participants[1], true
	}
	return ParticipantsOf(r.ID)
}

// Has reports whether the normalized user id is one of the two participants.
func (r Room) Has(userID string) bool {
	uid := NormalizeUserID(userID)
	a, b, ok := r.members()
	return ok && (a == uid || b == uid)
}

// Other returns the participant that is not selfID. ok is false when selfID
// is not a member of the room.
func (r Room) Other(selfID string) (string, bool) {
	self := NormalizeUserID(selfID)
	a, b, ok := r.members()
	if !ok {
		return "", false
	}
	switch self {
	case a:
		return b, true
	case b:
		return a, true
	}
	return "", false
}
