package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lamiaker/sou9i-sub003/internal/auth"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/usecase"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/adapter"
)

// PageMessagesController pages conversation history without the mark-read
// side effect (one controller per endpoint).
type PageMessagesController struct {
	UC *usecase.PageMessagesUseCase
}

func NewPageMessagesController(pool *pgxpool.Pool) *PageMessagesController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &PageMessagesController{UC: usecase.NewPageMessagesUseCase(repo)}
}

func (h *PageMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Query("conversation_id")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversation_id is required"})
			return
		}

		page, ok := queryInt(c, "page")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
			return
		}
		limit, ok := queryInt(c, "limit")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.PageMessagesInput{
			ConversationID: conversationID,
			RequesterID:    auth.UserID(c),
			Page:           page,
			Limit:          limit,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"messages":    messagesJSON(out.Messages),
			"page":        out.Page,
			"limit":       out.Limit,
			"total":       out.Total,
			"total_pages": out.TotalPages,
		})
	}
}
