package usecase

import (
	"context"
	"testing"
)

func TestMarkRead_StampsAndIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	convID := seedConversation(t, repo)
	appendUC := NewAppendMessageUseCase(repo)
	markUC := NewMarkReadUseCase(repo)
	ctx := context.Background()

	if _, err := appendUC.Execute(ctx, AppendMessageInput{ConversationID: convID, SenderID: "alice", Content: "hi"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	first, err := markUC.Execute(ctx, convID, "bob")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if first.MarkedRead != 1 {
		t.Fatalf("expected 1 message marked, got %d", first.MarkedRead)
	}

	msg := repo.messages[convID][0]
	if msg.ReadAt == nil {
		t.Fatal("read_at not stamped")
	}
	stamped := *msg.ReadAt

	second, err := markUC.Execute(ctx, convID, "bob")
	if err != nil {
		t.Fatalf("second mark read must not error: %v", err)
	}
	if second.MarkedRead != 0 {
		t.Fatalf("second mark read must be a no-op, marked %d", second.MarkedRead)
	}
	if !repo.messages[convID][0].ReadAt.Equal(stamped) {
		t.Fatal("read_at must never be overwritten")
	}
}

func TestMarkRead_OnlyTouchesMessagesAddressedToReader(t *testing.T) {
	repo := newFakeRepo()
	convID := seedConversation(t, repo)
	appendUC := NewAppendMessageUseCase(repo)
	markUC := NewMarkReadUseCase(repo)
	ctx := context.Background()

	if _, err := appendUC.Execute(ctx, AppendMessageInput{ConversationID: convID, SenderID: "alice", Content: "question"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := appendUC.Execute(ctx, AppendMessageInput{ConversationID: convID, SenderID: "bob", Content: "réponse"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	out, err := markUC.Execute(ctx, convID, "bob")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if out.MarkedRead != 1 {
		t.Fatalf("expected only alice's message marked, got %d", out.MarkedRead)
	}
	for _, m := range repo.messages[convID] {
		if m.SenderID == "bob" && m.ReadAt != nil {
			t.Fatal("reader's own message must stay unread")
		}
	}
}

func TestGetConversation_MarksAddressedMessagesRead(t *testing.T) {
	repo := newFakeRepo()
	convID := seedConversation(t, repo)
	appendUC := NewAppendMessageUseCase(repo)
	getUC := NewGetConversationUseCase(repo)
	ctx := context.Background()

	if _, err := appendUC.Execute(ctx, AppendMessageInput{ConversationID: convID, SenderID: "alice", Content: "Bonjour"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	out, err := getUC.Execute(ctx, GetConversationInput{ConversationID: convID, RequesterID: "bob"})
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if out.MarkedRead != 1 {
		t.Fatalf("opening the conversation must mark 1 message read, got %d", out.MarkedRead)
	}
	if len(out.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(out.Messages))
	}
	if out.Messages[0].ReadAt == nil {
		t.Fatal("returned page must carry the fresh read stamp")
	}

	// The sender opening their own conversation marks nothing.
	again, err := getUC.Execute(ctx, GetConversationInput{ConversationID: convID, RequesterID: "alice"})
	if err != nil {
		t.Fatalf("get as sender: %v", err)
	}
	if again.MarkedRead != 0 {
		t.Fatalf("sender's fetch must not mark anything, got %d", again.MarkedRead)
	}
}

func TestUnreadCount_TracksSendAndRead(t *testing.T) {
	repo := newFakeRepo()
	convID := seedConversation(t, repo)
	appendUC := NewAppendMessageUseCase(repo)
	markUC := NewMarkReadUseCase(repo)
	cache := newFakeCache()
	unreadUC := NewUnreadCountUseCase(repo, cache, 0)
	ctx := context.Background()

	baseline, err := unreadUC.Execute(ctx, "bob")
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if baseline != 0 {
		t.Fatalf("expected empty inbox, got %d", baseline)
	}

	for i := 0; i < 3; i++ {
		if _, err := appendUC.Execute(ctx, AppendMessageInput{ConversationID: convID, SenderID: "alice", Content: "ping"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	// Counter changed since the cached zero; drop the stale entry the way
	// the delivery coordinator does.
	if _, err := cache.Del(ctx, UnreadCacheKey("bob")); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	count, err := unreadUC.Execute(ctx, "bob")
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 unread, got %d", count)
	}

	if _, err := markUC.Execute(ctx, convID, "bob"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if _, err := cache.Del(ctx, UnreadCacheKey("bob")); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	after, err := unreadUC.Execute(ctx, "bob")
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if after != baseline {
		t.Fatalf("reading must drive the counter back to %d, got %d", baseline, after)
	}
}

func TestUnreadCount_ServesFromCache(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	uc := NewUnreadCountUseCase(repo, cache, 0)
	ctx := context.Background()

	if _, err := uc.Execute(ctx, "bob"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected the miss to populate the cache, sets=%d", cache.sets)
	}
	if _, err := uc.Execute(ctx, "bob"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("expected the second call to hit the cache, hits=%d", cache.hits)
	}
}
