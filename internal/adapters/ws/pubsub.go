package ws

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/cosmicverge/tickengine/internal/application/auth"
	"github.com/cosmicverge/tickengine/internal/application/session"
	"github.com/cosmicverge/tickengine/internal/infrastructure/store"
)

// Subscriber is the narrow slice of the coordination store client the
// pub/sub router needs.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// PubSubRouter fans the three channels the session layer cares about out
// to the Broadcaster. One router runs per process; every process's
// sessions receive every broadcast, since the channels are process-wide.
type PubSubRouter struct {
	store       Subscriber
	broadcaster *session.Broadcaster
	logger      *slog.Logger
}

// NewPubSubRouter builds a router over the given store and broadcaster.
func NewPubSubRouter(s Subscriber, b *session.Broadcaster, logger *slog.Logger) *PubSubRouter {
	return &PubSubRouter{store: s, broadcaster: b, logger: logger}
}

// Run subscribes to installation_login, connected_pilots_count, and
// system_update_complete, and blocks dispatching messages until ctx is
// canceled or the subscription fails.
func (r *PubSubRouter) Run(ctx context.Context) error {
	pubsub := r.store.Subscribe(ctx,
		store.ChannelInstallationLogin,
		store.ChannelConnectedPilotsCount,
		store.ChannelSystemUpdateComplete,
	)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(ctx, msg)
		}
	}
}

func (r *PubSubRouter) handle(ctx context.Context, msg *redis.Message) {
	switch msg.Channel {
	case store.ChannelInstallationLogin:
		if err := r.broadcaster.HandleInstallationLogin(ctx, auth.InstallationID(msg.Payload)); err != nil {
			r.logger.Warn("ws: installation_login handling failed", "error", err)
		}
	case store.ChannelConnectedPilotsCount:
		n, err := strconv.ParseInt(msg.Payload, 10, 64)
		if err != nil {
			r.logger.Warn("ws: bad connected_pilots_count payload", "payload", msg.Payload, "error", err)
			return
		}
		r.broadcaster.HandleConnectedPilotsCount(n)
	case store.ChannelSystemUpdateComplete:
		timestamp, err := strconv.ParseFloat(msg.Payload, 64)
		if err != nil {
			r.logger.Warn("ws: bad system_update_complete payload", "payload", msg.Payload, "error", err)
			return
		}
		r.broadcaster.HandleSystemUpdateComplete(timestamp)
	}
}
