package messaging

import (
	"errors"
	"testing"
)

func TestCanonicalPair_OrdersBothDirectionsTheSame(t *testing.T) {
	a1, b1, err := CanonicalPair("user-b", "user-a")
	if err != nil {
		t.Fatalf("canonical pair: %v", err)
	}
	a2, b2, err := CanonicalPair("user-a", "user-b")
	if err != nil {
		t.Fatalf("canonical pair: %v", err)
	}
	if a1 != a2 || b1 != b2 {
		t.Fatalf("pair not canonical: (%s,%s) vs (%s,%s)", a1, b1, a2, b2)
	}
	if a1 != "user-a" || b1 != "user-b" {
		t.Fatalf("expected sorted pair, got (%s,%s)", a1, b1)
	}
}

func TestCanonicalPair_RejectsSelfPair(t *testing.T) {
	if _, _, err := CanonicalPair("user-a", "user-a"); !errors.Is(err, ErrSelfConversation) {
		t.Fatalf("expected ErrSelfConversation, got %v", err)
	}
}

func TestConversation_Participants(t *testing.T) {
	conv := Conversation{ParticipantA: "user-a", ParticipantB: "user-b"}

	if !conv.HasParticipant("user-a") || !conv.HasParticipant("user-b") {
		t.Fatal("participants not recognized")
	}
	if conv.HasParticipant("user-c") {
		t.Fatal("stranger recognized as participant")
	}
	if conv.HasParticipant("") {
		t.Fatal("empty id recognized as participant")
	}

	if got := conv.OtherParticipant("user-a"); got != "user-b" {
		t.Fatalf("expected user-b, got %q", got)
	}
	if got := conv.OtherParticipant("user-b"); got != "user-a" {
		t.Fatalf("expected user-a, got %q", got)
	}
	if got := conv.OtherParticipant("user-c"); got != "" {
		t.Fatalf("expected empty peer for stranger, got %q", got)
	}
}

func TestConversation_HiddenFor(t *testing.T) {
	conv := Conversation{ParticipantA: "user-a", ParticipantB: "user-b", HiddenForA: true}

	if !conv.HiddenFor("user-a") {
		t.Fatal("expected hidden for user-a")
	}
	if conv.HiddenFor("user-b") {
		t.Fatal("did not expect hidden for user-b")
	}
	if conv.HiddenFor("user-c") {
		t.Fatal("did not expect hidden for stranger")
	}
}
