package realtime

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

var (
	instance *Bus
	once     sync.Once
	logger   *logger_i.Logger
)

// Bus is the session-scoped realtime channel. Delivery is at-most-once over
// redis pub/sub: subscribers only see messages published while connected.
type Bus struct {
	client *redis.Client
}

func GetBus(ctx context.Context) *Bus {
	once.Do(func() {
		logger = logger_i.NewLogger("RealtimeBus")
		instance = newBus(ctx)
	})
	return instance
}

func newBus(ctx context.Context) *Bus {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = config.RedisAddr
	}
	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		Password:              config.RedisPassword,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline: ", "error", err.Error())
		return nil
	}

	logger.Info("Realtime bus connected")
	go closeBus(ctx, client)
	return &Bus{client: client}
}

func closeBus(ctx context.Context, client *redis.Client) {
	<-ctx.Done()
	logger.Info("Closing realtime bus")
	if err := client.Close(); err != nil {
		logger.Error("Error closing redis client", "error", err)
	}
}

// SessionTopic names the channel connected viewers of a session listen on.
func SessionTopic(sessionID uint64) string {
	return config.SessionTopicPrefix + strconv.FormatUint(sessionID, 10)
}

// Publish marshals the payload and fires it at the topic. Best effort: a
// publish failure is logged, never propagated into the chat turn.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Error("could not marshal realtime payload", "topic", topic, "error", err)
		return err
	}
	return b.client.Publish(ctx, topic, raw).Err()
}

// Subscribe delivers raw payloads for a topic until the context ends. Used by
// the SSE stream handler.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan string, func()) {
	sub := b.client.Subscribe(ctx, topic)
	out := make(chan string, 16)

	go func() {
		defer close(out)
		for {
			select {
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = sub.Close() }
}

// NewTestBus wires a bus to an injected client. Test use only.
func NewTestBus(client *redis.Client) *Bus {
	if logger == nil {
		logger = logger_i.NewLogger("RealtimeBus")
	}
	return &Bus{client: client}
}
