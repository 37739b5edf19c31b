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

// ListConversationsController renders the requester's inbox, each thread
// annotated with the peer's directory entry (one controller per endpoint).
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(pool *pgxpool.Pool, users userport.UserDirectory) *ListConversationsController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &ListConversationsController{UC: usecase.NewListConversationsUseCase(repo, users)}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserID(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		out, err := h.UC.Execute(ctx, userID)
		if err != nil {
			respondUseCaseError(c, err)
			return
		}

		items := make([]gin.H, 0, len(out.Summaries))
		for i := range out.Summaries {
			s := &out.Summaries[i]
			item := conversationJSON(&s.Conversation)
			item["unread_count"] = s.UnreadCount
			if s.LastMessage != nil {
				item["last_message"] = gin.H{
					"sender_id":  s.LastMessage.SenderID,
					"content":    s.LastMessage.Content,
					"created_at": s.LastMessage.CreatedAt,
				}
			}
			if ref, ok := out.Peers[s.OtherParticipant(userID)]; ok {
				item["peer"] = gin.H{
					"id":           ref.ID,
					"display_name": ref.DisplayName,
					"avatar_url":   ref.AvatarURL,
				}
			}
			items = append(items, item)
		}
		c.JSON(http.StatusOK, gin.H{"conversations": items, "count": len(items)})
	}
}
