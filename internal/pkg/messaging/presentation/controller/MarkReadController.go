package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lamiaker/sou9i-sub003/internal/auth"
	"github.com/Lamiaker/sou9i-sub003/internal/delivery"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/usecase"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/adapter"
)

// MarkReadController handles the explicit mark-read endpoint. Safe to call
// repeatedly: a second call finds nothing unread and changes nothing.
type MarkReadController struct {
	UC          *usecase.MarkReadUseCase
	Coordinator *delivery.Coordinator
}

func NewMarkReadController(pool *pgxpool.Pool, coord *delivery.Coordinator) *MarkReadController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &MarkReadController{
		UC:          usecase.NewMarkReadUseCase(repo),
		Coordinator: coord,
	}
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}
		readerID := auth.UserID(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		out, err := h.UC.Execute(ctx, conversationID, readerID)
		if err != nil {
			respondUseCaseError(c, err)
			return
		}

		h.Coordinator.ConversationRead(ctx, out.Conversation, readerID, out.MarkedRead)

		c.JSON(http.StatusOK, gin.H{"marked_read": out.MarkedRead})
	}
}
