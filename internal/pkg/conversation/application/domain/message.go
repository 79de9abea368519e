package conversation

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxMessageLength caps message text, matching the input limit of the mobile client.
const MaxMessageLength = 500

// Message is an immutable log entry in a conversation. SentAt is assigned by
// the store on append. SenderAvatarURL is a snapshot of the sender's avatar at
// send time; it is never updated when the profile changes later.
type Message struct {
	ID              string
	ConversationID  string
	SenderID        string
	Text            string
	SentAt          time.Time
	SenderAvatarURL string
}

// NewMessage validates and shapes an outgoing message before it touches the
// store. Validation is synchronous: a rejected message never causes a write.
func NewMessage(conversationID string, senderID string, text string, senderAvatarURL string) (Message, error) {
	sender := NormalizeUserID(senderID)
	if conversationID == "" || sender == "" {
		return Message{}, ErrInvalidParticipants
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Message{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLength {
		return Message{}, ErrMessageTooLong
	}

	return Message{
		ConversationID:  conversationID,
		SenderID:        sender,
		Text:            trimmed,
		SenderAvatarURL: senderAvatarURL,
	}, nil
}
