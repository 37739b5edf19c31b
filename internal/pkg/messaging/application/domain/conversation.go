package messaging

import (
	"errors"
	"time"
)

// Domain-level errors for messaging behaviors.
var (
	ErrSelfConversation = errors.New("messaging: a conversation needs two distinct users")
	ErrNotParticipant   = errors.New("messaging: user is not a participant in the conversation")
	ErrEmptyMessage     = errors.New("messaging: message content is empty")
)

// Conversation is the unique thread between exactly two users, optionally
// opened about a listing. The participant pair is canonicalized (A < B) so
// it forms a natural key; the listing context is captured at creation time
// and never re-derived.
type Conversation struct {
	ID             string     `db:"id"`
	ParticipantA   string     `db:"participant_a"`
	ParticipantB   string     `db:"participant_b"`
	ContextID      *string    `db:"context_id"`
	ContextTitle   *string    `db:"context_title"`
	CreatedAt      time.Time  `db:"created_at"`
	LastActivityAt time.Time  `db:"last_activity_at"`
	HiddenForA     bool       `db:"hidden_for_a"`
	HiddenForB     bool       `db:"hidden_for_b"`
}

// CanonicalPair orders two distinct user ids so that (x,y) and (y,x) map to
// the same conversation key. A self-pair is rejected.
func CanonicalPair(x, y string) (a, b string, err error) {
	if x == y {
		return "", "", ErrSelfConversation
	}
	if x < y {
		return x, y, nil
	}
	return y, x, nil
}

// HasParticipant reports whether userID belongs to the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (userID == c.ParticipantA || userID == c.ParticipantB)
}

// OtherParticipant returns the peer of userID, or "" when userID is not a
// participant.
func (c *Conversation) OtherParticipant(userID string) string {
	switch userID {
	case c.ParticipantA:
		return c.ParticipantB
	case c.ParticipantB:
		return c.ParticipantA
	default:
		return ""
	}
}

// HiddenFor reports whether userID has archived the conversation.
func (c *Conversation) HiddenFor(userID string) bool {
	switch userID {
	case c.ParticipantA:
		return c.HiddenForA
	case c.ParticipantB:
		return c.HiddenForB
	default:
		return false
	}
}

// MessagePreview is the latest-message snippet shown in conversation lists.
type MessagePreview struct {
	SenderID  string    `db:"sender_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// ConversationSummary annotates a conversation with the per-user unread
// count and latest message for list rendering.
type ConversationSummary struct {
	Conversation
	UnreadCount int64
	LastMessage *MessagePreview
}
