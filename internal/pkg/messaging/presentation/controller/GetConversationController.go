package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lamiaker/sou9i-sub003/internal/auth"
	"github.com/Lamiaker/sou9i-sub003/internal/delivery"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/usecase"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/adapter"
)

// GetConversationController returns a conversation with one page of history.
// Opening a conversation marks everything addressed to the requester as
// read, so the coordinator gets a chance to emit the read receipt.
type GetConversationController struct {
	UC          *usecase.GetConversationUseCase
	Coordinator *delivery.Coordinator
}

func NewGetConversationController(pool *pgxpool.Pool, coord *delivery.Coordinator) *GetConversationController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &GetConversationController{
		UC:          usecase.NewGetConversationUseCase(repo),
		Coordinator: coord,
	}
}

func (h *GetConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}
		requesterID := auth.UserID(c)

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

		out, err := h.UC.Execute(ctx, usecase.GetConversationInput{
			ConversationID: conversationID,
			RequesterID:    requesterID,
			Page:           page,
			Limit:          limit,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}

		h.Coordinator.ConversationRead(ctx, out.Conversation, requesterID, out.MarkedRead)

		c.JSON(http.StatusOK, gin.H{
			"conversation": conversationJSON(out.Conversation),
			"messages":     messagesJSON(out.Messages),
			"page":         out.Page,
			"limit":        out.Limit,
			"total":        out.Total,
			"total_pages":  out.TotalPages,
		})
	}
}

// queryInt parses an optional integer query parameter. An absent parameter
// is (0, true) so the use case applies its defaults; a value that is present
// but not an integer is (0, false) and the caller rejects the request.
func queryInt(c *gin.Context, name string) (int, bool) {
	v := c.Query(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
