package task

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	qport "github.com/Lamiaker/sou9i-sub003/internal/infrastructure/queue/port"
	repoAdapter "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/adapter"
)

// PurgeConversationsTaskType removes conversations both participants have
// archived. It is enqueued after every archive with a uniqueness window so
// a burst of archives collapses into one sweep.
const PurgeConversationsTaskType = "messaging:purge_conversations"

// NewPurgeConversationsTask builds the enqueue-side task. The payload is
// empty; the handler sweeps everything eligible.
func NewPurgeConversationsTask() (qport.Task, qport.EnqueueOption) {
	return qport.Task{Type: PurgeConversationsTaskType},
		qport.EnqueueOption{
			Queue:     "messaging",
			ProcessIn: time.Minute,
			MaxRetry:  5,
			UniqueTTL: time.Minute,
		}
}

// RegisterPurgeConversationsTask binds the sweep handler to the worker server.
func RegisterPurgeConversationsTask(srv qport.Server, pool *pgxpool.Pool) {
	srv.Register(PurgeConversationsTaskType, func(ctx context.Context, t qport.Task) error {
		repo := repoAdapter.NewPgMessagingRepository(pool)

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		deleted, err := repo.DeleteMutuallyHidden(ctx)
		if err != nil {
			return err
		}
		if deleted > 0 {
			zap.L().Info("purged mutually archived conversations", zap.Int64("deleted", deleted))
		}
		return nil
	})
}
