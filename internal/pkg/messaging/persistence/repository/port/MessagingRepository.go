package repository

import (
	"context"
	"errors"
	"time"

	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
)

// ErrConversationNotFound is returned when a conversation id or participant
// pair resolves to nothing.
var ErrConversationNotFound = errors.New("messaging repository: conversation not found")

// MessagingRepository defines persistence for conversations, messages and
// read-state. Conversation uniqueness per participant pair is enforced at
// this layer (unique constraint) so concurrent first contact cannot create
// duplicates.
type MessagingRepository interface {
	// FindConversationByPair looks up the conversation for a canonicalized
	// pair. Returns ErrConversationNotFound when absent.
	FindConversationByPair(ctx context.Context, participantA, participantB string) (*messaging.Conversation, error)

	// CreateConversation inserts a conversation for a canonicalized pair.
	// If a concurrent insert won the race, the existing row is returned and
	// the supplied context metadata is discarded (first contact wins).
	CreateConversation(ctx context.Context, c messaging.Conversation) (*messaging.Conversation, error)

	// GetConversation fetches a conversation by id. Returns
	// ErrConversationNotFound when absent.
	GetConversation(ctx context.Context, conversationID string) (*messaging.Conversation, error)

	// ListConversationsForUser returns the user's non-archived conversations
	// ordered by last activity descending, each with its unread count and
	// latest-message preview.
	ListConversationsForUser(ctx context.Context, userID string) ([]messaging.ConversationSummary, error)

	// SetHidden flips the archive flag of one participant.
	SetHidden(ctx context.Context, conversationID, userID string, hidden bool) error

	// DeleteMutuallyHidden hard-deletes conversations both participants have
	// archived, returning the number of conversations removed.
	DeleteMutuallyHidden(ctx context.Context) (int64, error)

	// SaveMessage persists a message, bumps the conversation's last activity
	// and clears both archive flags so the thread resurfaces. The stored
	// message (with generated id and timestamp) is returned.
	SaveMessage(ctx context.Context, m messaging.Message) (*messaging.Message, error)

	// PageMessages returns one page of messages ordered oldest to newest,
	// plus the conversation's total message count.
	PageMessages(ctx context.Context, conversationID string, limit, offset int) ([]messaging.Message, int64, error)

	// MarkConversationRead stamps read_at on every unread message addressed
	// to readerID and returns how many rows changed. Idempotent.
	MarkConversationRead(ctx context.Context, conversationID, readerID string, at time.Time) (int64, error)

	// UnreadCountForUser aggregates unread messages addressed to the user
	// across all their conversations.
	UnreadCountForUser(ctx context.Context, userID string) (int64, error)
}
