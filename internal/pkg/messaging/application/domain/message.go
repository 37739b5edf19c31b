package messaging

import (
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation. The only mutation it
// ever sees is the null-to-timestamp transition of ReadAt, performed by the
// recipient; that transition is monotonic and idempotent.
type Message struct {
	ID             string     `db:"id"`
	ConversationID string     `db:"conversation_id"`
	SenderID       string     `db:"sender_id"`
	Content        string     `db:"content"`
	CreatedAt      time.Time  `db:"created_at"`
	ReadAt         *time.Time `db:"read_at"`
}

// NewMessage validates and normalizes a draft message. Content is trimmed;
// a message that is empty after trimming is rejected.
func NewMessage(conversationID, senderID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}, nil
}

// Read reports whether the recipient has read the message.
func (m *Message) Read() bool {
	return m.ReadAt != nil
}
