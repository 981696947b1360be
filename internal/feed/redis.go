package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "lesson_scheduler:changes"

// NewRedisClient подключается к redis с короткими таймаутами
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

// RedisFeed рассылает изменения через redis pub/sub, чтобы их видели все инстансы
type RedisFeed struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisFeed(client *redis.Client, channel string, logger *zap.Logger) *RedisFeed {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisFeed{client: client, channel: channel, logger: logger}
}

// Healthy проверяет соединение с redis
func (f *RedisFeed) Healthy(ctx context.Context) bool {
	if f == nil || f.client == nil {
		return false
	}
	return f.client.Ping(ctx).Err() == nil
}

func (f *RedisFeed) Publish(ctx context.Context, change model.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan model.Change, error) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	// дожидаемся подтверждения подписки, иначе первые сообщения теряются
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", f.channel, err)
	}

	out := make(chan model.Change, 1)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change model.Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					f.logger.Warn("Malformed change message", zap.String("payload", msg.Payload), zap.Error(err))
					continue
				}
				select {
				case out <- change:
				default:
				}
			}
		}
	}()

	return out, nil
}

func (f *RedisFeed) Close() error {
	return f.client.Close()
}
