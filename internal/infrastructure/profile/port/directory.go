package port

import "context"

// Directory looks up display data for a user on the profile backend.
// Implementations should return an error for network failures and for unknown
// users alike; callers in the avatar chain treat any failure as "no result".
type Directory interface {
	// AvatarURL returns the user's current avatar URI, or "" when the profile
	// has none set.
	AvatarURL(ctx context.Context, userID string) (string, error)
}
