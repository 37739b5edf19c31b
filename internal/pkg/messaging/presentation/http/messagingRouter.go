package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lamiaker/sou9i-sub003/internal/auth"
	"github.com/Lamiaker/sou9i-sub003/internal/delivery"
	cacheport "github.com/Lamiaker/sou9i-sub003/internal/infrastructure/cache/port"
	queueport "github.com/Lamiaker/sou9i-sub003/internal/infrastructure/queue/port"
	"github.com/Lamiaker/sou9i-sub003/internal/infrastructure/realtime"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/presentation/controller"
	userport "github.com/Lamiaker/sou9i-sub003/internal/repository/port"
)

// Deps bundles everything the messaging endpoints need.
type Deps struct {
	Pool        *pgxpool.Pool
	Users       userport.UserDirectory
	Cache       cacheport.Cache
	Queue       queueport.Client
	Router      *realtime.Router
	Bridge      *realtime.Bridge
	Verifier    auth.TokenVerifier
	Coordinator *delivery.Coordinator
	UnreadTTL   time.Duration
}

// RegisterRoutes registers messaging HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes; everything except the websocket goes through the session
// middleware (the socket verifies its token itself during the handshake).
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	createCtl := controller.NewCreateConversationController(d.Pool, d.Users)
	listCtl := controller.NewListConversationsController(d.Pool, d.Users)
	getCtl := controller.NewGetConversationController(d.Pool, d.Coordinator)
	archiveCtl := controller.NewArchiveConversationController(d.Pool, d.Queue)
	markReadCtl := controller.NewMarkReadController(d.Pool, d.Coordinator)
	sendCtl := controller.NewSendMessageController(d.Pool, d.Coordinator)
	pageCtl := controller.NewPageMessagesController(d.Pool)
	unreadCtl := controller.NewUnreadCountController(d.Pool, d.Cache, d.UnreadTTL)
	socketCtl := controller.NewMessagingSocketController(d.Pool, d.Router, d.Bridge, d.Verifier)

	session := auth.RequireSession(d.Verifier)

	conversations := g.Group("/conversations", session)
	conversations.GET("", listCtl.Handle())
	conversations.POST("", createCtl.Handle())
	conversations.GET("/:conversationId", getCtl.Handle())
	conversations.DELETE("/:conversationId", archiveCtl.Handle())
	conversations.PATCH("/:conversationId/read", markReadCtl.Handle())

	messages := g.Group("/messages", session)
	messages.POST("", sendCtl.Handle())
	messages.GET("", pageCtl.Handle())
	messages.GET("/unread", unreadCtl.Handle())

	g.GET("/messaging/ws", socketCtl.Handle())
}
