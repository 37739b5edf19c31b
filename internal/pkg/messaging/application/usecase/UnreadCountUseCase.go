package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	cacheport "github.com/Lamiaker/sou9i-sub003/internal/infrastructure/cache/port"
	repository "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/port"
)

// UnreadCacheKey is the cache key for a user's aggregate unread counter.
// The delivery coordinator invalidates it whenever the counter may change.
func UnreadCacheKey(userID string) string {
	return "messaging:unread:" + userID
}

// UnreadCountUseCase computes the badge counter: unread messages addressed
// to the user summed across all their conversations. The count is always
// recomputed from the store (no persisted denormalized counter, so it cannot
// drift); a short-TTL cache absorbs badge polling.
type UnreadCountUseCase struct {
	Repo  repository.MessagingRepository
	Cache cacheport.Cache
	TTL   time.Duration
}

func NewUnreadCountUseCase(repo repository.MessagingRepository, cache cacheport.Cache, ttl time.Duration) *UnreadCountUseCase {
	return &UnreadCountUseCase{Repo: repo, Cache: cache, TTL: ttl}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}

	// A cache miss or a cache failure both fall through to the store; the
	// counter is cheap to recompute and must never 500 over redis trouble.
	key := UnreadCacheKey(userID)
	if uc.Cache != nil {
		if v, err := uc.Cache.Get(ctx, key); err == nil {
			if count, perr := strconv.ParseInt(v, 10, 64); perr == nil {
				return count, nil
			}
		}
	}

	count, err := uc.Repo.UnreadCountForUser(ctx, userID)
	if err != nil {
		return 0, wrapPersistence(err)
	}

	if uc.Cache != nil {
		_ = uc.Cache.Set(ctx, key, strconv.FormatInt(count, 10), uc.TTL)
	}
	return count, nil
}
