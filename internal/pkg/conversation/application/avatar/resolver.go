package avatar

import (
	"context"
	"net/url"
	"strings"

	profileport "moni-chat/internal/infrastructure/profile/port"
	conversation "moni-chat/internal/pkg/conversation/application/domain"
	repository "moni-chat/internal/pkg/conversation/persistence/repository/port"
)

// defaultLabel seeds the placeholder avatar when nothing better is known.
const defaultLabel = "U"

// DefaultURL builds the deterministic placeholder avatar for a label. It is
// the terminal step of every chain, so resolution can never fail.
func DefaultURL(label string) string {
	if label == "" {
		label = defaultLabel
	}
	return "https://ui-avatars.com/api/?background=FFD600&color=181818&name=" + url.QueryEscape(label)
}

// Request carries everything a source may consult when resolving the avatar
// of Participant inside a conversation. Optional fields stay zero when the
// caller has nothing to offer (e.g. no room document exists yet).
type Request struct {
	ConversationID string
	// Participant is the normalized id whose avatar is wanted.
	Participant string
	// Self is the normalized id of the requesting user; the cached room
	// avatar only applies to the non-self participant.
	Self string
	// Explicit is an avatar handed through by the caller (session state).
	Explicit string
	// Room is the conversation document when already loaded, nil otherwise.
	Room *conversation.Room
}

// Source is one step of the resolution chain. Returning "" means "no result";
// errors are treated the same way by the chain and only logged by callers
// that care. Sources must not mutate the request.
type Source interface {
	Resolve(ctx context.Context, req Request) (string, error)
}

// Chain tries its sources in order and stops at the first non-empty result.
// Order matters: explicit and cached data are cheapest and freshest for an
// active chat, the history scan avoids a network round trip for participants
// who have already sent messages, and the remote lookup is the costly
// fallback for silent participants and brand-new conversations.
type Chain struct {
	sources []Source
}

// NewChain composes sources into a first-success-wins resolver.
func NewChain(sources ...Source) Chain {
	return Chain{sources: sources}
}

// NewDefaultChain wires the standard order:
// explicit -> cached room -> message history -> remote profile -> placeholder.
func NewDefaultChain(repo repository.RoomRepository, dir profileport.Directory) Chain {
	return NewChain(
		Explicit{},
		CachedRoom{},
		History{Repo: repo},
		Remote{Directory: dir},
	)
}

// Resolve runs the chain. It always terminates in the default placeholder, so
// the result is usable as-is.
func (c Chain) Resolve(ctx context.Context, req Request) string {
	for _, src := range c.sources {
		uri, err := src.Resolve(ctx, req)
		if err != nil {
			continue
		}
		if uri = strings.TrimSpace(uri); uri != "" {
			return uri
		}
	}
	return DefaultURL(defaultLabel)
}
