package adapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	cacheport "moni-chat/internal/infrastructure/cache/port"
	"moni-chat/internal/infrastructure/profile/port"
)

// avatarCacheTTL bounds staleness of cached avatars; profile edits show up in
// chats within this window at the latest.
const avatarCacheTTL = 15 * time.Minute

const avatarCachePrefix = "profile:avatar:"

// CachedDirectory decorates a Directory with a read-through cache. Only
// successful lookups are cached; failures and empty results always retry the
// backend, so a transient outage never pins a wrong answer.
type CachedDirectory struct {
	next  port.Directory
	cache cacheport.Cache
}

func NewCachedDirectory(next port.Directory, cache cacheport.Cache) *CachedDirectory {
	return &CachedDirectory{next: next, cache: cache}
}

// Ensure interface compliance at compile time
var _ port.Directory = (*CachedDirectory)(nil)

func (d *CachedDirectory) AvatarURL(ctx context.Context, userID string) (string, error) {
	key := avatarCachePrefix + userID

	cached, err := d.cache.Get(ctx, key)
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && !errors.Is(err, cacheport.ErrMiss) {
		slog.WarnContext(ctx, "avatar cache read failed", "user_id", userID, "err", err)
	}

	uri, err := d.next.AvatarURL(ctx, userID)
	if err != nil {
		return "", err
	}
	if uri != "" {
		if err := d.cache.Set(ctx, key, uri, avatarCacheTTL); err != nil {
			slog.WarnContext(ctx, "avatar cache write failed", "user_id", userID, "err", err)
		}
	}
	return uri, nil
}
