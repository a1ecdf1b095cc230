// Package notify fans inbox events out to connected clients. Events are
// hints for live views; the message store stays the source of truth, so
// delivery is best-effort and a slow or absent subscriber loses events.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const TypeMessageCreated = "message.created"

// Event is what a receiver's open inbox stream gets pushed.
type Event struct {
	Type       string    `json:"type"`
	MessageID  uuid.UUID `json:"message_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Subject    *string   `json:"subject,omitempty"`
	Voice      bool      `json:"voice"`
	CreatedAt  time.Time `json:"created_at"`
}

type Publisher interface {
	// Publish sends ev to every stream open for userID.
	Publish(ctx context.Context, userID uuid.UUID, ev Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, userID uuid.UUID) (Subscription, error)
}

type Subscription interface {
	// Events is closed after Close.
	Events() <-chan Event
	Close() error
}

type Notifier interface {
	Publisher
	Subscriber
}

// subscriptionBuffer bounds how many undelivered events a stream holds
// before new ones are dropped.
const subscriptionBuffer = 16

func inboxChannel(userID uuid.UUID) string {
	return "inbox:" + userID.String()
}
