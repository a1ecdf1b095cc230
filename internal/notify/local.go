package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// LocalNotifier delivers events within one process. It is used when no
// REDIS_URL is configured.
type LocalNotifier struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[*localSubscription]struct{}
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: make(map[uuid.UUID]map[*localSubscription]struct{})}
}

func (n *LocalNotifier) Publish(ctx context.Context, userID uuid.UUID, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for sub := range n.subs[userID] {
		select {
		case sub.ch <- ev:
		default:
			// Subscriber is behind; drop rather than block the sender.
		}
	}
	return nil
}

func (n *LocalNotifier) Subscribe(ctx context.Context, userID uuid.UUID) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &localSubscription{
		n:      n,
		userID: userID,
		ch:     make(chan Event, subscriptionBuffer),
	}

	n.mu.Lock()
	if n.subs[userID] == nil {
		n.subs[userID] = make(map[*localSubscription]struct{})
	}
	n.subs[userID][sub] = struct{}{}
	n.mu.Unlock()

	return sub, nil
}

type localSubscription struct {
	n      *LocalNotifier
	userID uuid.UUID
	ch     chan Event
	once   sync.Once
}

func (s *localSubscription) Events() <-chan Event { return s.ch }

func (s *localSubscription) Close() error {
	s.once.Do(func() {
		s.n.mu.Lock()
		defer s.n.mu.Unlock()

		delete(s.n.subs[s.userID], s)
		if len(s.n.subs[s.userID]) == 0 {
			delete(s.n.subs, s.userID)
		}
		close(s.ch)
	})
	return nil
}
