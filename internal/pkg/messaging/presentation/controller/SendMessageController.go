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

// SendMessageController persists a message and then, and only then, lets
// the coordinator broadcast it. A failed append returns an error with no
// broadcast, so clients never see a phantom "sent" message.
type SendMessageController struct {
	UC          *usecase.AppendMessageUseCase
	Coordinator *delivery.Coordinator
}

func NewSendMessageController(pool *pgxpool.Pool, coord *delivery.Coordinator) *SendMessageController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &SendMessageController{
		UC:          usecase.NewAppendMessageUseCase(repo),
		Coordinator: coord,
	}
}

type sendMessageRequest struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	Content        string `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.AppendMessageInput{
			ConversationID: req.ConversationID,
			SenderID:       auth.UserID(c),
			Content:        req.Content,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}

		h.Coordinator.MessageCreated(ctx, out.Conversation, out.Message)

		c.JSON(http.StatusCreated, messageJSON(out.Message))
	}
}
