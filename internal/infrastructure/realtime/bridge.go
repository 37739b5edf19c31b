package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const roomChannelPrefix = "messaging:room:"

// envelope is the frame exchanged between instances over redis pub/sub.
type envelope struct {
	Origin         string          `json:"origin"`
	ConversationID string          `json:"conversation_id"`
	ExcludeUserID  string          `json:"exclude_user_id,omitempty"`
	Payload        json.RawMessage `json:"payload"`
}

// Bridge fans room events out across server instances through redis pub/sub.
// Each instance delivers to its local Router immediately and publishes an
// envelope tagged with its own origin id; subscribed instances re-deliver
// everything except their own envelopes. With the bridge in place the local
// registries are per-instance caches, not the sole source of truth.
//
// Delivery is best effort end to end: a publish failure is logged and the
// local fan-out still happens, so single-instance deployments keep working
// with redis down.
type Bridge struct {
	origin string
	router *Router
	rdb    *redis.Client
}

// NewBridge wires the router to a redis client.
func NewBridge(router *Router, rdb *redis.Client) *Bridge {
	return &Bridge{
		origin: uuid.NewString(),
		router: router,
		rdb:    rdb,
	}
}

// PublishRoom delivers payload to the local room and forwards it to peer
// instances. excludeUserID is honored on every instance.
func (b *Bridge) PublishRoom(ctx context.Context, conversationID string, payload []byte, excludeUserID string) {
	b.router.Broadcast(conversationID, payload, excludeUserID)

	if b.rdb == nil {
		return
	}
	env := envelope{
		Origin:         b.origin,
		ConversationID: conversationID,
		ExcludeUserID:  excludeUserID,
		Payload:        payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		zap.L().Error("bridge: encode envelope", zap.Error(err))
		return
	}
	if err := b.rdb.Publish(ctx, roomChannelPrefix+conversationID, data).Err(); err != nil {
		zap.L().Warn("bridge: publish room event", zap.String("conversation_id", conversationID), zap.Error(err))
	}
}

// Run subscribes to room channels and re-delivers peer envelopes to local
// connections. It blocks until the context is canceled.
func (b *Bridge) Run(ctx context.Context) error {
	if b.rdb == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	pubsub := b.rdb.PSubscribe(ctx, roomChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				zap.L().Warn("bridge: drop malformed envelope", zap.Error(err))
				continue
			}
			if env.Origin == b.origin {
				continue // already delivered locally at publish time
			}
			b.router.Broadcast(env.ConversationID, env.Payload, env.ExcludeUserID)
		}
	}
}
