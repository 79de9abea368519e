package conversation

import "strings"

// idSeparator joins the two normalized participant ids into a conversation id.
// Known limitation: a user id that itself contains the separator makes
// ParticipantsOf ambiguous; the registration backend does not mint such ids.
const idSeparator = "_"

// NormalizeUserID canonicalizes a raw user identifier for comparison and id
// construction. It is total: any input yields a result, empty input yields "".
func NormalizeUserID(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// DeriveConversationID builds the canonical id for the unordered pair (a, b):
// both ids normalized, sorted ascending and joined with "_". The derivation is
// commutative, so the same two users always land in the same room regardless
// of who opens it. Empty ids and self-chat are rejected.
func DeriveConversationID(a, b string) (string, error) {
	na := NormalizeUserID(a)
	nb := NormalizeUserID(b)
	if na == "" || nb == "" || na == nb {
		return "", ErrInvalidParticipants
	}
	if na > nb {
		na, nb = nb, na
	}
	return na + idSeparator + nb, nil
}

// ParticipantsOf splits a conversation id back into its two participant ids.
// The third return is false when the id does not look like a two-party id.
func ParticipantsOf(id string) (string, string, bool) {
	parts := strings.Split(id, idSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
