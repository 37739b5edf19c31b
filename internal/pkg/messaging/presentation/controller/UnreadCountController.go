package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lamiaker/sou9i-sub003/internal/auth"
	cacheport "github.com/Lamiaker/sou9i-sub003/internal/infrastructure/cache/port"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/usecase"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/adapter"
)

// UnreadCountController serves the badge counter (one controller per endpoint).
type UnreadCountController struct {
	UC *usecase.UnreadCountUseCase
}

func NewUnreadCountController(pool *pgxpool.Pool, cache cacheport.Cache, ttl time.Duration) *UnreadCountController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &UnreadCountController{UC: usecase.NewUnreadCountUseCase(repo, cache, ttl)}
}

func (h *UnreadCountController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		count, err := h.UC.Execute(ctx, auth.UserID(c))
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}
