package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Lamiaker/sou9i-sub003/internal/delivery"
	messaging "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/domain"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/usecase"
)

const handlerTimeout = 3 * time.Second

// respondUseCaseError maps use case failures to the REST error taxonomy.
// Persistence details are logged server-side and never surfaced.
func respondUseCaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		zap.L().Error("messaging persistence failure",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, messaging.ErrSelfConversation),
		errors.Is(err, messaging.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func conversationJSON(conv *messaging.Conversation) gin.H {
	return gin.H{
		"id":               conv.ID,
		"participant_a":    conv.ParticipantA,
		"participant_b":    conv.ParticipantB,
		"context_id":       conv.ContextID,
		"context_title":    conv.ContextTitle,
		"created_at":       conv.CreatedAt,
		"last_activity_at": conv.LastActivityAt,
	}
}

func messageJSON(msg *messaging.Message) gin.H {
	f := delivery.ToMessageFrame(msg)
	return gin.H{
		"id":              f.ID,
		"conversation_id": f.ConversationID,
		"sender_id":       f.SenderID,
		"content":         f.Content,
		"created_at":      f.CreatedAt,
		"read_at":         f.ReadAt,
	}
}

func messagesJSON(msgs []messaging.Message) []gin.H {
	out := make([]gin.H, 0, len(msgs))
	for i := range msgs {
		out = append(out, messageJSON(&msgs[i]))
	}
	return out
}
