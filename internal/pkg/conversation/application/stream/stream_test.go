package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	conversation "moni-chat/internal/pkg/conversation/application/domain"
)

// fakeFeed is a single-conversation feed that records its subscribers and
// lets the test publish into them directly.
type fakeFeed struct {
	mu          sync.Mutex
	subscribers map[int]func(conversation.Message)
	next        int
	cancels     int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subscribers: make(map[int]func(conversation.Message))}
}

func (f *fakeFeed) Subscribe(_ string, deliver func(conversation.Message)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.subscribers[id] = deliver
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subscribers[id]; ok {
			delete(f.subscribers, id)
			f.cancels++
		}
	}
}

func (f *fakeFeed) publish(m conversation.Message) {
	f.mu.Lock()
	targets := make([]func(conversation.Message), 0, len(f.subscribers))
	for _, d := range f.subscribers {
		targets = append(targets, d)
	}
	f.mu.Unlock()
	for _, d := range targets {
		d(m)
	}
}

func (f *fakeFeed) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

// fakeHistory returns a fixed snapshot and can publish into the feed during
// the load, simulating a message that lands mid-resolve.
type fakeHistory struct {
	msgs   []conversation.Message
	err    error
	onLoad func()
}

func (h *fakeHistory) ListMessages(context.Context, string) ([]conversation.Message, error) {
	if h.onLoad != nil {
		h.onLoad()
	}
	return h.msgs, h.err
}

func msgAt(id string, minute int) conversation.Message {
	return conversation.Message{
		ID:             id,
		ConversationID: "alice_bob",
		SenderID:       "alice",
		Text:           id,
		SentAt:         time.Date(2024, 3, 15, 9, minute, 0, 0, time.UTC),
	}
}

func drain(t *testing.T, s *Stream, n int) []conversation.Message {
	t.Helper()
	out := make([]conversation.Message, 0, n)
	for len(out) < n {
		select {
		case m, ok := <-s.Messages():
			if !ok {
				t.Fatalf("stream closed after %d of %d messages", len(out), n)
			}
			out = append(out, m)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d of %d messages", len(out), n)
		}
	}
	return out
}

func TestOpenDeliversHistoryThenLive(t *testing.T) {
	feed := newFakeFeed()
	hist := &fakeHistory{msgs: []conversation.Message{msgAt("h2", 2), msgAt("h1", 1)}}

	s, err := Open(context.Background(), "alice_bob", hist, feed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.State() != StateSubscribed {
		t.Fatalf("state = %v, want StateSubscribed", s.State())
	}

	feed.publish(msgAt("live1", 3))

	got := drain(t, s, 3)
	wantOrder := []string{"h1", "h2", "live1"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestOpenStitchesMessagesArrivingDuringLoad(t *testing.T) {
	feed := newFakeFeed()
	hist := &fakeHistory{msgs: []conversation.Message{msgAt("h1", 1)}}
	hist.onLoad = func() {
		// Lands after the subscription but before the snapshot returns.
		feed.publish(msgAt("mid", 2))
	}

	s, err := Open(context.Background(), "alice_bob", hist, feed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got := drain(t, s, 2)
	if got[0].ID != "h1" || got[1].ID != "mid" {
		t.Errorf("order = %s, %s; want h1, mid", got[0].ID, got[1].ID)
	}
}

func TestOpenDropsSnapshotDuplicates(t *testing.T) {
	feed := newFakeFeed()
	hist := &fakeHistory{msgs: []conversation.Message{msgAt("h1", 1), msgAt("h2", 2)}}
	hist.onLoad = func() {
		// The same append shows up in both the snapshot and the live feed.
		feed.publish(msgAt("h2", 2))
		feed.publish(msgAt("mid", 3))
	}

	s, err := Open(context.Background(), "alice_bob", hist, feed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got := drain(t, s, 3)
	wantOrder := []string{"h1", "h2", "mid"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, want)
		}
	}

	select {
	case m, ok := <-s.Messages():
		if ok {
			t.Errorf("unexpected extra message %s", m.ID)
		}
	default:
	}
}

func TestOpenHistoryFailureReleasesSubscription(t *testing.T) {
	feed := newFakeFeed()
	hist := &fakeHistory{err: errors.New("store down")}

	_, err := Open(context.Background(), "alice_bob", hist, feed)
	if err == nil {
		t.Fatal("Open succeeded, want error")
	}
	if feed.subscriberCount() != 0 {
		t.Errorf("subscription leaked: %d active", feed.subscriberCount())
	}
}

func TestOpenRejectsMalformedConversation(t *testing.T) {
	_, err := Open(context.Background(), "solo", &fakeHistory{}, newFakeFeed())
	if !errors.Is(err, conversation.ErrInvalidParticipants) {
		t.Fatalf("error = %v, want ErrInvalidParticipants", err)
	}
}

func TestCloseDetachesAndDropsLateDeliveries(t *testing.T) {
	feed := newFakeFeed()
	s, err := Open(context.Background(), "alice_bob", &fakeHistory{}, feed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	s.Close()
	s.Close() // second close is a no-op

	if s.State() != StateClosed {
		t.Fatalf("state = %v, want StateClosed", s.State())
	}
	if feed.subscriberCount() != 0 {
		t.Errorf("subscription still attached after Close")
	}

	// A publisher that took its snapshot before the cancel must not panic or
	// deliver.
	s.deliver(msgAt("late", 5))
	if _, ok := <-s.Messages(); ok {
		t.Error("message delivered after Close")
	}
}

func TestCloseWhileResolvingDropsBufferedMessages(t *testing.T) {
	feed := newFakeFeed()
	s := &Stream{conversationID: "alice_bob", state: StateResolving}
	s.cancel = feed.Subscribe("alice_bob", s.deliver)

	// Lands while the history load is still in flight.
	feed.publish(msgAt("pending", 1))

	s.Close()

	if s.State() != StateClosed {
		t.Fatalf("state = %v, want StateClosed", s.State())
	}
	if feed.subscriberCount() != 0 {
		t.Error("subscription still attached after Close")
	}
	s.mu.Lock()
	if len(s.pending) != 0 {
		t.Errorf("%d buffered messages survived Close", len(s.pending))
	}
	s.mu.Unlock()
}

func TestReopenedStreamIsIndependent(t *testing.T) {
	feed := newFakeFeed()
	hist := &fakeHistory{}

	first, err := Open(context.Background(), "alice_bob", hist, feed)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	first.Close()

	second, err := Open(context.Background(), "alice_bob", hist, feed)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer second.Close()

	feed.publish(msgAt("live1", 1))
	got := drain(t, second, 1)
	if got[0].ID != "live1" {
		t.Errorf("got %s, want live1", got[0].ID)
	}
	if second.State() != StateSubscribed {
		t.Errorf("state = %v, want StateSubscribed", second.State())
	}
}

func TestSlowConsumerClosesStream(t *testing.T) {
	feed := newFakeFeed()
	s, err := Open(context.Background(), "alice_bob", &fakeHistory{}, feed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Nobody reads; overflowing the buffer must close the stream instead of
	// blocking the publisher.
	for i := 0; i < sendBuffer+1; i++ {
		feed.publish(msgAt("flood", i%60))
	}

	if s.State() != StateClosed {
		t.Fatalf("state = %v, want StateClosed after overflow", s.State())
	}
	if feed.subscriberCount() != 0 {
		t.Error("subscription still attached after overflow close")
	}
}
