package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisNotifier publishes events on a per-user Redis channel, so every
// server instance behind the load balancer sees them.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisNotifier(redisURL string, logger *zap.Logger) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisNotifier{
		client: redis.NewClient(opts),
		logger: logger.With(zap.String("component", "notify")),
	}, nil
}

func (n *RedisNotifier) Health(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

func (n *RedisNotifier) Publish(ctx context.Context, userID uuid.UUID, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.client.Publish(ctx, inboxChannel(userID), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context, userID uuid.UUID) (Subscription, error) {
	ps := n.client.Subscribe(ctx, inboxChannel(userID))

	// Wait for the subscription confirmation so callers know the stream
	// is live before they report it open.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe inbox: %w", err)
	}

	sub := &redisSubscription{
		ps:   ps,
		ch:   make(chan Event, subscriptionBuffer),
		done: make(chan struct{}),
	}
	go sub.forward(n.logger)
	return sub, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	ch   chan Event
	done chan struct{}
}

func (s *redisSubscription) forward(logger *zap.Logger) {
	defer close(s.done)
	defer close(s.ch)

	for msg := range s.ps.Channel() {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			logger.Warn("dropping malformed event", zap.String("channel", msg.Channel), zap.Error(err))
			continue
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
}

func (s *redisSubscription) Events() <-chan Event { return s.ch }

// Close ends the subscription and waits for the forwarder to drain.
func (s *redisSubscription) Close() error {
	err := s.ps.Close()
	<-s.done
	return err
}
