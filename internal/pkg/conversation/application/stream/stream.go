package stream

import (
	"context"
	"sort"
	"sync"

	conversation "moni-chat/internal/pkg/conversation/application/domain"
)

// State of one open stream. The lifecycle is
// Resolving -> Subscribed -> Closed, with Error reachable from Resolving when
// the history load fails.
type State int

const (
	StateResolving State = iota
	StateSubscribed
	StateClosed
	StateError
)

// sendBuffer bounds how far a consumer may fall behind before the stream is
// closed to keep backpressure bounded.
const sendBuffer = 256

// Feed is the push half of the room store: live appends for one conversation,
// delivered in store order. Cancel must be safe to call more than once.
type Feed interface {
	Subscribe(conversationID string, deliver func(conversation.Message)) (cancel func())
}

// History is the read half needed to open a stream; the room repository
// satisfies it.
type History interface {
	ListMessages(ctx context.Context, conversationID string) ([]conversation.Message, error)
}

// Stream is a live, ordered view over one conversation's message log: the
// full history followed by an append-only feed of future messages. Messages
// are never reordered or retracted. The caller owns the lifecycle and must
// Close the stream to release the subscription; a closed stream is dead and
// re-opening yields an independent stream.
type Stream struct {
	conversationID string

	mu      sync.Mutex
	state   State
	out     chan conversation.Message
	cancel  func()
	pending []conversation.Message
}

// Open subscribes to the conversation and loads its history. The subscription
// is attached before the history read so nothing appended in between is lost;
// live messages arriving during the load are buffered and stitched in after
// the snapshot, with snapshot duplicates dropped by id.
func Open(ctx context.Context, conversationID string, hist History, feed Feed) (*Stream, error) {
	if _, _, ok := conversation.ParticipantsOf(conversationID); !ok {
		return nil, conversation.ErrInvalidParticipants
	}

	s := &Stream{
		conversationID: conversationID,
		state:          StateResolving,
	}
	s.cancel = feed.Subscribe(conversationID, s.deliver)

	msgs, err := hist.ListMessages(ctx, conversationID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		// Closed while resolving: the late load is a no-op.
		return nil, context.Canceled
	}
	if err != nil {
		s.terminateLocked(StateError)
		return nil, err
	}

	// One ascending sort on snapshot delivery; live order is the store's.
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].SentAt.Before(msgs[j].SentAt) })

	// The snapshot must fit in full: the consumer cannot drain before Open
	// returns. Only live traffic competes for the slack.
	s.out = make(chan conversation.Message, len(msgs)+len(s.pending)+sendBuffer)

	seen := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		seen[m.ID] = struct{}{}
		s.pushLocked(m)
	}
	for _, m := range s.pending {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		s.pushLocked(m)
	}
	s.pending = nil

	if s.state == StateResolving {
		s.state = StateSubscribed
	}
	return s, nil
}

// ConversationID identifies the conversation this stream is attached to.
func (s *Stream) ConversationID() string { return s.conversationID }

// Messages is the ordered feed. The channel is closed when the stream closes,
// whether by Close or because the consumer fell too far behind.
func (s *Stream) Messages() <-chan conversation.Message { return s.out }

// State reports the current lifecycle state.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close detaches the subscription. After Close returns nothing more is
// delivered; a feed callback already in flight is dropped. Closing twice is a
// no-op.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminateLocked(StateClosed)
}

// deliver is the feed callback. It runs on the publisher's goroutine and must
// stay cheap: buffer while resolving, forward while subscribed, drop after.
func (s *Stream) deliver(m conversation.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateResolving:
		s.pending = append(s.pending, m)
	case StateSubscribed:
		s.pushLocked(m)
	default:
		// Closed or errored: drop.
	}
}

// pushLocked forwards a message to the consumer. A full buffer means the
// consumer stopped reading; the stream closes rather than block the
// publisher or silently skip a message mid-sequence.
func (s *Stream) pushLocked(m conversation.Message) {
	if s.state == StateClosed || s.state == StateError {
		return
	}
	select {
	case s.out <- m:
	default:
		s.terminateLocked(StateClosed)
	}
}

// terminateLocked moves the stream to a terminal state exactly once,
// releasing the subscription and closing the consumer channel.
func (s *Stream) terminateLocked(st State) {
	if s.state == StateClosed || s.state == StateError {
		return
	}
	s.state = st
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.pending = nil
	if s.out != nil {
		close(s.out)
	}
}
