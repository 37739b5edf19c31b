package delivery

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	cacheport "github.com/Lamiaker/sou9i-sub003/internal/infrastructure/cache/port"
	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/usecase"
)

type publishCall struct {
	conversationID string
	payload        []byte
	excludeUserID  string
}

type fakePublisher struct {
	calls []publishCall
}

func (p *fakePublisher) PublishRoom(_ context.Context, conversationID string, payload []byte, excludeUserID string) {
	p.calls = append(p.calls, publishCall{conversationID, payload, excludeUserID})
}

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{values: make(map[string]string)} }

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.values[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := c.values[k]; ok {
			delete(c.values, k)
			n++
		}
	}
	return n, nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }
func (c *fakeCache) Close() error               { return nil }

var _ cacheport.Cache = (*fakeCache)(nil)

func testConversation() *messaging.Conversation {
	return &messaging.Conversation{
		ID:           "conv-1",
		ParticipantA: "alice",
		ParticipantB: "bob",
	}
}

func TestMessageCreated_BroadcastsToWholeRoom(t *testing.T) {
	pub := &fakePublisher{}
	cache := newFakeCache()
	coord := NewCoordinator(pub, cache)
	ctx := context.Background()

	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	msg := &messaging.Message{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "alice",
		Content:        "Bonjour",
		CreatedAt:      created,
	}
	coord.MessageCreated(ctx, testConversation(), msg)

	if len(pub.calls) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(pub.calls))
	}
	call := pub.calls[0]
	if call.conversationID != "conv-1" {
		t.Fatalf("published to wrong room: %s", call.conversationID)
	}
	if call.excludeUserID != "" {
		t.Fatalf("new messages go to everyone including the sender's tabs, excluded %q", call.excludeUserID)
	}

	var frame struct {
		Type           string       `json:"type"`
		ConversationID string       `json:"conversation_id"`
		Message        MessageFrame `json:"message"`
	}
	if err := json.Unmarshal(call.payload, &frame); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if frame.Type != "new_message" {
		t.Fatalf("expected type new_message, got %q", frame.Type)
	}
	if frame.ConversationID != "conv-1" {
		t.Fatalf("frame names wrong conversation: %s", frame.ConversationID)
	}
	if frame.Message.ID != "msg-1" || frame.Message.SenderID != "alice" || frame.Message.Content != "Bonjour" {
		t.Fatalf("unexpected message frame: %+v", frame.Message)
	}
	if !frame.Message.CreatedAt.Equal(created) {
		t.Fatalf("created_at not preserved: %s", frame.Message.CreatedAt)
	}
	if frame.Message.ReadAt != nil {
		t.Fatal("fresh message must be unread on the wire")
	}
}

func TestMessageCreated_InvalidatesRecipientUnreadCounter(t *testing.T) {
	pub := &fakePublisher{}
	cache := newFakeCache()
	ctx := context.Background()
	if err := cache.Set(ctx, usecase.UnreadCacheKey("bob"), "4", 0); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	if err := cache.Set(ctx, usecase.UnreadCacheKey("alice"), "0", 0); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	coord := NewCoordinator(pub, cache)
	coord.MessageCreated(ctx, testConversation(), &messaging.Message{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "alice",
		Content:        "Bonjour",
	})

	if _, err := cache.Get(ctx, usecase.UnreadCacheKey("bob")); err != cacheport.ErrMiss {
		t.Fatal("recipient's cached counter must be dropped")
	}
	if _, err := cache.Get(ctx, usecase.UnreadCacheKey("alice")); err != nil {
		t.Fatal("sender's cached counter must survive")
	}
}

func TestConversationRead_BroadcastsReceipt(t *testing.T) {
	pub := &fakePublisher{}
	cache := newFakeCache()
	ctx := context.Background()
	if err := cache.Set(ctx, usecase.UnreadCacheKey("bob"), "4", 0); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	coord := NewCoordinator(pub, cache)
	coord.ConversationRead(ctx, testConversation(), "bob", 4)

	if len(pub.calls) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(pub.calls))
	}
	var frame struct {
		Type           string `json:"type"`
		ConversationID string `json:"conversation_id"`
		ReaderID       string `json:"reader_id"`
	}
	if err := json.Unmarshal(pub.calls[0].payload, &frame); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if frame.Type != "messages_read" || frame.ConversationID != "conv-1" || frame.ReaderID != "bob" {
		t.Fatalf("unexpected receipt frame: %+v", frame)
	}
	if _, err := cache.Get(ctx, usecase.UnreadCacheKey("bob")); err != cacheport.ErrMiss {
		t.Fatal("reader's cached counter must be dropped")
	}
}

func TestConversationRead_NoOpMarkEmitsNothing(t *testing.T) {
	pub := &fakePublisher{}
	cache := newFakeCache()
	ctx := context.Background()
	if err := cache.Set(ctx, usecase.UnreadCacheKey("bob"), "0", 0); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	coord := NewCoordinator(pub, cache)
	coord.ConversationRead(ctx, testConversation(), "bob", 0)

	if len(pub.calls) != 0 {
		t.Fatalf("idempotent re-read must not broadcast, got %d publishes", len(pub.calls))
	}
	if _, err := cache.Get(ctx, usecase.UnreadCacheKey("bob")); err != nil {
		t.Fatal("no-op mark must leave the cache alone")
	}
}
