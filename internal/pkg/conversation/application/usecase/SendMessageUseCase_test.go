package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"moni-chat/internal/pkg/conversation/application/avatar"
	conversation "moni-chat/internal/pkg/conversation/application/domain"
)

func newSendUC(repo *memRepo, dir *stubDirectory) *SendMessageUseCase {
	return NewSendMessageUseCase(repo, avatar.NewDefaultChain(repo, dir))
}

func TestSendMessageAppendsAndEnsuresRoom(t *testing.T) {
	repo := newMemRepo()
	uc := newSendUC(repo, &stubDirectory{})

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "alice_bob",
		SenderID:       "Alice",
		Text:           "  hello bob  ",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if msg.ID == "" || msg.SentAt.IsZero() {
		t.Errorf("store-assigned fields missing: id=%q sentAt=%v", msg.ID, msg.SentAt)
	}
	if msg.SenderID != "alice" {
		t.Errorf("SenderID = %q, want normalized", msg.SenderID)
	}
	if msg.Text != "hello bob" {
		t.Errorf("Text = %q, want trimmed", msg.Text)
	}

	room, ok := repo.rooms["alice_bob"]
	if !ok {
		t.Fatal("room was not created on first send")
	}
	if room.Participants != [2]string{"alice", "bob"} {
		t.Errorf("room participants = %v", room.Participants)
	}
}

func TestSendMessageValidationShortCircuitsStore(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "whitespace only", text: "   \n\t ", wantErr: conversation.ErrEmptyMessage},
		{name: "over limit", text: strings.Repeat("x", conversation.MaxMessageLength+1), wantErr: conversation.ErrMessageTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			uc := newSendUC(repo, &stubDirectory{})

			_, err := uc.Execute(context.Background(), SendMessageInput{
				ConversationID: "alice_bob",
				SenderID:       "alice",
				Text:           tt.text,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if repo.appendCalls != 0 || repo.upsertCalls != 0 {
				t.Errorf("store touched on invalid input: appends=%d upserts=%d", repo.appendCalls, repo.upsertCalls)
			}
		})
	}
}

func TestSendMessageKeepsExistingRoom(t *testing.T) {
	repo := newMemRepo()
	repo.rooms["alice_bob"] = conversation.Room{
		ID:                "alice_bob",
		Participants:      [2]string{"alice", "bob"},
		ReceiverAvatarURL: "https://cdn.example/bob.png",
	}
	uc := newSendUC(repo, &stubDirectory{})

	if _, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "alice_bob",
		SenderID:       "alice",
		Text:           "hi",
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if repo.upsertCalls != 0 {
		t.Errorf("upsert called %d times for an existing room, want 0", repo.upsertCalls)
	}
}

func TestSendMessageSnapshotsExplicitAvatar(t *testing.T) {
	repo := newMemRepo()
	dir := &stubDirectory{avatars: map[string]string{"alice": "https://cdn.example/remote.png"}}
	uc := newSendUC(repo, dir)

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID:  "alice_bob",
		SenderID:        "alice",
		Text:            "hi",
		SenderAvatarURL: "https://cdn.example/session.png",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if msg.SenderAvatarURL != "https://cdn.example/session.png" {
		t.Errorf("SenderAvatarURL = %q, want session avatar", msg.SenderAvatarURL)
	}
	if dir.calls != 0 {
		t.Errorf("profile backend consulted %d times despite explicit avatar", dir.calls)
	}
}

func TestSendMessageFallsBackToHistoryAvatar(t *testing.T) {
	repo := newMemRepo()
	repo.seed("alice_bob", "alice", "earlier", "https://cdn.example/earlier.png", time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC))
	uc := newSendUC(repo, &stubDirectory{})

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "alice_bob",
		SenderID:       "alice",
		Text:           "again",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if msg.SenderAvatarURL != "https://cdn.example/earlier.png" {
		t.Errorf("SenderAvatarURL = %q, want snapshot from history", msg.SenderAvatarURL)
	}
}

func TestSendMessageWrapsStoreFailure(t *testing.T) {
	repo := newMemRepo()
	repo.appendErr = errors.New("connection reset")
	uc := newSendUC(repo, &stubDirectory{})

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "alice_bob",
		SenderID:       "alice",
		Text:           "hi",
	})
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("error = %v, want ErrSendFailed", err)
	}
}

func TestSendMessageRejectsMalformedConversation(t *testing.T) {
	repo := newMemRepo()
	uc := newSendUC(repo, &stubDirectory{})

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "not-a-pair",
		SenderID:       "alice",
		Text:           "hi",
	})
	if !errors.Is(err, conversation.ErrInvalidParticipants) {
		t.Fatalf("error = %v, want ErrInvalidParticipants", err)
	}
}
