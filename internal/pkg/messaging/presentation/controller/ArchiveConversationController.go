package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Lamiaker/sou9i-sub003/internal/auth"
	queueport "github.com/Lamiaker/sou9i-sub003/internal/infrastructure/queue/port"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/task"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/usecase"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/adapter"
)

// ArchiveConversationController handles DELETE on a conversation: the thread
// is hidden for the requester only, and a background sweep hard-deletes it
// once both participants have archived.
type ArchiveConversationController struct {
	UC *usecase.ArchiveConversationUseCase
	Q  queueport.Client
}

func NewArchiveConversationController(pool *pgxpool.Pool, q queueport.Client) *ArchiveConversationController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &ArchiveConversationController{
		UC: usecase.NewArchiveConversationUseCase(repo),
		Q:  q,
	}
}

func (h *ArchiveConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		if _, err := h.UC.Execute(ctx, conversationID, auth.UserID(c)); err != nil {
			respondUseCaseError(c, err)
			return
		}

		if h.Q != nil {
			t, opt := task.NewPurgeConversationsTask()
			if _, err := h.Q.Enqueue(ctx, t, opt); err != nil {
				// The sweep runs again on the next archive; nothing lost.
				zap.L().Warn("enqueue purge task", zap.Error(err))
			}
		}

		c.Status(http.StatusNoContent)
	}
}
