package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	cacheport "github.com/Lamiaker/sou9i-sub003/internal/infrastructure/cache/port"
	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
	userport "github.com/Lamiaker/sou9i-sub003/internal/repository/port"
)

// fakeRepo is an in-memory MessagingRepository mirroring the Postgres
// adapter's semantics: pair uniqueness, activity bumps, unhide on append.
type fakeRepo struct {
	mu            sync.Mutex
	conversations map[string]*messaging.Conversation
	messages      map[string][]messaging.Message // conversationID -> ordered
	nextConvID    int
	nextMsgID     int
	clock         time.Time

	failSave bool // force SaveMessage to fail
	missFind bool // make FindConversationByPair miss, as in a create race
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		conversations: make(map[string]*messaging.Conversation),
		messages:      make(map[string][]messaging.Message),
		clock:         time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *fakeRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *fakeRepo) FindConversationByPair(_ context.Context, a, b string) (*messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missFind {
		return nil, repository.ErrConversationNotFound
	}
	for _, c := range r.conversations {
		if c.ParticipantA == a && c.ParticipantB == b {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrConversationNotFound
}

func (r *fakeRepo) CreateConversation(_ context.Context, c messaging.Conversation) (*messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.conversations {
		if existing.ParticipantA == c.ParticipantA && existing.ParticipantB == c.ParticipantB {
			cp := *existing
			return &cp, nil
		}
	}
	r.nextConvID++
	c.ID = fmt.Sprintf("conv-%04d", r.nextConvID)
	c.LastActivityAt = c.CreatedAt
	r.conversations[c.ID] = &c
	cp := c
	return &cp, nil
}

func (r *fakeRepo) GetConversation(_ context.Context, id string) (*messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return nil, repository.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) ListConversationsForUser(_ context.Context, userID string) ([]messaging.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []messaging.ConversationSummary
	for _, c := range r.conversations {
		if !c.HasParticipant(userID) || c.HiddenFor(userID) {
			continue
		}
		s := messaging.ConversationSummary{Conversation: *c}
		msgs := r.messages[c.ID]
		for i := range msgs {
			if msgs[i].SenderID != userID && msgs[i].ReadAt == nil {
				s.UnreadCount++
			}
		}
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			s.LastMessage = &messaging.MessagePreview{
				SenderID:  last.SenderID,
				Content:   last.Content,
				CreatedAt: last.CreatedAt,
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivityAt.After(out[j].LastActivityAt)
	})
	return out, nil
}

func (r *fakeRepo) SetHidden(_ context.Context, conversationID, userID string, hidden bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok || !c.HasParticipant(userID) {
		return repository.ErrConversationNotFound
	}
	if c.ParticipantA == userID {
		c.HiddenForA = hidden
	} else {
		c.HiddenForB = hidden
	}
	return nil
}

func (r *fakeRepo) DeleteMutuallyHidden(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, c := range r.conversations {
		if c.HiddenForA && c.HiddenForB {
			delete(r.conversations, id)
			delete(r.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeRepo) SaveMessage(_ context.Context, m messaging.Message) (*messaging.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return nil, fmt.Errorf("disk on fire")
	}
	c, ok := r.conversations[m.ConversationID]
	if !ok {
		return nil, repository.ErrConversationNotFound
	}
	r.nextMsgID++
	m.ID = fmt.Sprintf("msg-%04d", r.nextMsgID)
	m.CreatedAt = r.tick()
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	c.LastActivityAt = m.CreatedAt
	c.HiddenForA = false
	c.HiddenForB = false
	cp := m
	return &cp, nil
}

func (r *fakeRepo) PageMessages(_ context.Context, conversationID string, limit, offset int) ([]messaging.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[conversationID]
	total := int64(len(msgs))
	if offset >= len(msgs) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(msgs) {
		end = len(msgs)
	}
	page := make([]messaging.Message, end-offset)
	copy(page, msgs[offset:end])
	return page, total, nil
}

func (r *fakeRepo) MarkConversationRead(_ context.Context, conversationID, readerID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[conversationID]
	var marked int64
	for i := range msgs {
		if msgs[i].SenderID != readerID && msgs[i].ReadAt == nil {
			t := at
			msgs[i].ReadAt = &t
			marked++
		}
	}
	return marked, nil
}

func (r *fakeRepo) UnreadCountForUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, c := range r.conversations {
		if !c.HasParticipant(userID) {
			continue
		}
		for _, m := range r.messages[id] {
			if m.SenderID != userID && m.ReadAt == nil {
				count++
			}
		}
	}
	return count, nil
}

var _ repository.MessagingRepository = (*fakeRepo)(nil)

// fakeUsers knows a fixed set of user ids.
type fakeUsers struct {
	known map[string]bool
}

func newFakeUsers(ids ...string) *fakeUsers {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return &fakeUsers{known: known}
}

func (u *fakeUsers) Exists(_ context.Context, userID string) (bool, error) {
	return u.known[userID], nil
}

func (u *fakeUsers) GetByIDs(_ context.Context, userIDs []string) (map[string]userport.UserRef, error) {
	refs := make(map[string]userport.UserRef)
	for _, id := range userIDs {
		if u.known[id] {
			refs[id] = userport.UserRef{ID: id, DisplayName: id}
		}
	}
	return refs, nil
}

var _ userport.UserDirectory = (*fakeUsers)(nil)

// fakeCache is a map-backed port.Cache without TTL handling.
type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
	hits   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	c.hits++
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	c.sets++
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
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
