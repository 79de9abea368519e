package realtime

import (
	"testing"

	conversation "moni-chat/internal/pkg/conversation/application/domain"
)

func TestHubPublishReachesSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	var gotA, gotB []conversation.Message
	cancelA := hub.Subscribe("alice_bob", func(m conversation.Message) { gotA = append(gotA, m) })
	defer cancelA()
	cancelB := hub.Subscribe("alice_bob", func(m conversation.Message) { gotB = append(gotB, m) })
	defer cancelB()
	cancelOther := hub.Subscribe("carol_dave", func(m conversation.Message) {
		t.Error("subscriber of another conversation received the message")
	})
	defer cancelOther()

	msg := conversation.Message{ID: "m1", ConversationID: "alice_bob", SenderID: "alice", Text: "hi"}
	if n := hub.Publish("alice_bob", msg); n != 2 {
		t.Errorf("Publish reached %d subscribers, want 2", n)
	}
	if len(gotA) != 1 || len(gotB) != 1 {
		t.Errorf("deliveries = %d, %d; want 1 each", len(gotA), len(gotB))
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	delivered := 0
	cancel := hub.Subscribe("alice_bob", func(conversation.Message) { delivered++ })

	hub.Publish("alice_bob", conversation.Message{ID: "m1"})
	cancel()
	cancel() // cancelling twice is a no-op
	hub.Publish("alice_bob", conversation.Message{ID: "m2"})

	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	if n := hub.Publish("alice_bob", conversation.Message{ID: "m1"}); n != 0 {
		t.Errorf("Publish = %d, want 0", n)
	}
}

func TestHubSubscriberMayCancelFromCallback(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	delivered := 0
	var cancel func()
	cancel = hub.Subscribe("alice_bob", func(conversation.Message) {
		delivered++
		cancel()
	})

	hub.Publish("alice_bob", conversation.Message{ID: "m1"})
	hub.Publish("alice_bob", conversation.Message{ID: "m2"})

	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
}
