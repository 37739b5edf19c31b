package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lamiaker/sou9i-sub003/internal/auth"
	"github.com/Lamiaker/sou9i-sub003/internal/infrastructure/realtime"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/usecase"
	repoAdapter "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/persistence/repository/adapter"
)

// MessagingSocketController handles the websocket endpoint for realtime
// messaging traffic. The socket is bound to a verified identity at connect
// time: the session token travels in the query string and is checked before
// the connection is registered, so a bare client-asserted user id is never
// trusted.
//
// The socket carries room membership, typing relays and server-pushed
// events only. Message content is not accepted here; persistence happens
// on the REST surface, and the delivery coordinator triggers the fan-out
// after the write succeeds.
type MessagingSocketController struct {
	router          *realtime.Router
	bridge          *realtime.Bridge
	verifier        auth.TokenVerifier
	joinUC          *usecase.JoinConversationUseCase
	inflightTimeout time.Duration
}

func NewMessagingSocketController(pool *pgxpool.Pool, router *realtime.Router, bridge *realtime.Bridge, verifier auth.TokenVerifier) *MessagingSocketController {
	repo := repoAdapter.NewPgMessagingRepository(pool)
	return &MessagingSocketController{
		router:          router,
		bridge:          bridge,
		verifier:        verifier,
		joinUC:          usecase.NewJoinConversationUseCase(repo),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browsers send the session token explicitly, so origin checking is
		// left to the reverse proxy.
		return true
	},
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	IsTyping       bool   `json:"is_typing,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type           string `json:"type"`
	UserID         string `json:"user_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type typingFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	IsTyping       bool   `json:"is_typing"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects.
func (ctl *MessagingSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ctl.verifier.Verify(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.router.Attach(conn)
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 16)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected", UserID: userID}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(c, conn, frame)
			case "leave":
				ctl.handleLeave(conn, frame)
			case "typing":
				ctl.handleTyping(c, conn, frame)
			case "message":
				// Content must be persisted via REST first; the room gets the
				// event from the coordinator, not from the client.
				ctl.replyError(conn, "unsupported_type", "send messages via the REST API")
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *MessagingSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	if _, err := ctl.joinUC.Execute(ctx, frame.ConversationID, conn.UserID); err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	ctl.router.Join(frame.ConversationID, conn)

	if payload, err := json.Marshal(ackFrame{Type: "joined", ConversationID: frame.ConversationID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *MessagingSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}
	ctl.router.Leave(frame.ConversationID, conn)

	if payload, err := json.Marshal(ackFrame{Type: "left", ConversationID: frame.ConversationID}); err == nil {
		_ = conn.Send(payload)
	}
}

// handleTyping relays a typing indicator to everyone else in the room.
// Ephemeral: never persisted, never retried, and the typist's own other
// tabs are excluded on every instance.
func (ctl *MessagingSocketController) handleTyping(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	if _, err := ctl.joinUC.Execute(ctx, frame.ConversationID, conn.UserID); err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	out := typingFrame{
		Type:           "user_typing",
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
		IsTyping:       frame.IsTyping,
	}
	payload, err := json.Marshal(out)
	if err != nil {
		ctl.replyError(conn, "internal_error", "failed to encode typing event")
		return
	}
	ctl.bridge.PublishRoom(ctx, frame.ConversationID, payload, conn.UserID)
}

func (ctl *MessagingSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, usecase.ErrNotFound):
		ctl.replyError(conn, "not_found", "conversation not found")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

// replyError reports a problem to the offending connection only; other
// connections are never affected by a malformed frame.
func (ctl *MessagingSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{Type: "error", Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
