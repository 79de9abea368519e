package conversation

import (
	"sort"
	"time"
)

// ConversationSummary is the derived directory row for one room. It is
// recomputed on every directory load and never persisted.
type ConversationSummary struct {
	ConversationID   string
	OtherParticipant string
	AvatarURL        string
	LastMessageText  string
	LastMessageTime  *time.Time
}

// SortSummaries orders summaries by last-message time descending. Summaries
// without any message sort after all summaries with one. The sort is stable so
// ties keep their insertion order.
func SortSummaries(list []ConversationSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].LastMessageTime, list[j].LastMessageTime
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
