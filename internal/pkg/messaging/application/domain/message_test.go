package messaging

import (
	"errors"
	"testing"
)

func TestNewMessage_TrimsContent(t *testing.T) {
	msg, err := NewMessage("conv-1", "user-a", "  Bonjour  ")
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	if msg.Content != "Bonjour" {
		t.Fatalf("expected trimmed content, got %q", msg.Content)
	}
	if msg.ReadAt != nil {
		t.Fatal("new message must start unread")
	}
}

func TestNewMessage_RejectsEmptyContent(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\t "} {
		if _, err := NewMessage("conv-1", "user-a", content); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("content %q: expected ErrEmptyMessage, got %v", content, err)
		}
	}
}
