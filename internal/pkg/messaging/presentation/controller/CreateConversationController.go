package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lamiaker/sou9i-sub003/internal/auth"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/usecase"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/adapter"
	userport "github.com/Lamiaker/sou9i-sub003/internal/repository/port"
)

// CreateConversationController handles first contact between two users
// (one controller per endpoint).
type CreateConversationController struct {
	UC *usecase.FindOrCreateConversationUseCase
}

func NewCreateConversationController(pool *pgxpool.Pool, users userport.UserDirectory) *CreateConversationController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &CreateConversationController{UC: usecase.NewFindOrCreateConversationUseCase(repo, users)}
}

type createConversationRequest struct {
	RecipientID  string  `json:"recipient_id" binding:"required"`
	ContextID    *string `json:"context_id"`
	ContextTitle *string `json:"context_title"`
}

func (h *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.FindOrCreateConversationInput{
			RequesterID:  auth.UserID(c),
			OtherUserID:  req.RecipientID,
			ContextID:    req.ContextID,
			ContextTitle: req.ContextTitle,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}

		status := http.StatusOK
		if out.Created {
			status = http.StatusCreated
		}
		c.JSON(status, conversationJSON(out.Conversation))
	}
}
