package delivery

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	cacheport "github.com/Lamiaker/sou9i-sub003/internal/infrastructure/cache/port"
	"github.com/Lamiaker/sou9i-sub003/internal/infrastructure/metrics"
	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/usecase"
)

// RoomPublisher fans a payload out to every live connection in a
// conversation's room, locally and across instances. Implemented by the
// realtime bridge.
type RoomPublisher interface {
	PublishRoom(ctx context.Context, conversationID string, payload []byte, excludeUserID string)
}

// MessageFrame is the wire shape of a message inside realtime events.
type MessageFrame struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

type newMessageFrame struct {
	Type           string       `json:"type"`
	ConversationID string       `json:"conversation_id"`
	Message        MessageFrame `json:"message"`
}

type messagesReadFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	ReaderID       string `json:"reader_id"`
}

// Coordinator is the glue between persistence and the realtime gateway.
// It is only invoked after a use case has succeeded, which is what makes
// write-before-notify hold: a persistence failure never reaches this code.
// Everything here is best effort: a failed or missed broadcast is repaired
// by the client's next REST fetch, never retried.
type Coordinator struct {
	publisher RoomPublisher
	cache     cacheport.Cache
}

func NewCoordinator(publisher RoomPublisher, cache cacheport.Cache) *Coordinator {
	return &Coordinator{publisher: publisher, cache: cache}
}

// MessageCreated broadcasts a freshly persisted message to the conversation
// room and invalidates the recipient's unread counter.
func (c *Coordinator) MessageCreated(ctx context.Context, conv *messaging.Conversation, msg *messaging.Message) {
	frame := newMessageFrame{
		Type:           "new_message",
		ConversationID: conv.ID,
		Message:        ToMessageFrame(msg),
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		zap.L().Error("coordinator: encode new_message", zap.Error(err))
		return
	}

	metrics.BroadcastsTotal.WithLabelValues("new_message").Inc()
	// The sender's other tabs want the event too, so nobody is excluded.
	c.publisher.PublishRoom(ctx, conv.ID, payload, "")

	c.invalidateUnread(ctx, conv.OtherParticipant(msg.SenderID))
}

// ConversationRead broadcasts a read receipt so the sender's open sessions
// can flip their indicators without a fetch. A no-op mark (nothing was
// unread) emits nothing.
func (c *Coordinator) ConversationRead(ctx context.Context, conv *messaging.Conversation, readerID string, marked int64) {
	if marked == 0 {
		return
	}

	frame := messagesReadFrame{
		Type:           "messages_read",
		ConversationID: conv.ID,
		ReaderID:       readerID,
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		zap.L().Error("coordinator: encode messages_read", zap.Error(err))
		return
	}

	metrics.BroadcastsTotal.WithLabelValues("messages_read").Inc()
	c.publisher.PublishRoom(ctx, conv.ID, payload, "")

	c.invalidateUnread(ctx, readerID)
}

func (c *Coordinator) invalidateUnread(ctx context.Context, userID string) {
	if c.cache == nil || userID == "" {
		return
	}
	if _, err := c.cache.Del(ctx, usecase.UnreadCacheKey(userID)); err != nil {
		zap.L().Warn("coordinator: invalidate unread counter", zap.String("user_id", userID), zap.Error(err))
	}
}

// ToMessageFrame converts a domain message to its wire shape.
func ToMessageFrame(msg *messaging.Message) MessageFrame {
	return MessageFrame{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
		ReadAt:         msg.ReadAt,
	}
}
