package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a platform user: a worker, a manager or a factory admin.
// The ID is the identity key carried in access tokens.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Department   *string   `json:"department,omitempty"`
	Position     *string   `json:"position,omitempty"`
	Skills       []string  `json:"skills"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfilePatch holds the mutable profile fields. Nil means "leave as is".
type ProfilePatch struct {
	FullName   *string
	Department *string
	Position   *string
	Skills     *[]string
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.FullName == nil && p.Department == nil && p.Position == nil && p.Skills == nil
}

// ManagerWorker links a manager to a worker they supervise.
type ManagerWorker struct {
	ManagerID  uuid.UUID `json:"manager_id"`
	WorkerID   uuid.UUID `json:"worker_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// Message is a direct message between two profiles. Content is immutable
// once written; only Read changes, and only from false to true.
//
// Content may carry a voice attachment, see package voice.
type Message struct {
	ID             uuid.UUID  `json:"id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	ReceiverID     uuid.UUID  `json:"receiver_id"`
	Subject        *string    `json:"subject"`
	Content        string     `json:"content"`
	Read           bool       `json:"read"`
	ConversationID *uuid.UUID `json:"conversation_id"`
	CreatedAt      time.Time  `json:"created_at"`
}

// InboxMessage is a received message joined with the sender's display name.
type InboxMessage struct {
	Message
	SenderName string `json:"sender_name"`
}

// InboxCursor points at the last message of a page. The next page starts
// strictly after it in (created_at DESC, id ASC) order.
type InboxCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// InboxQuery narrows an inbox listing.
type InboxQuery struct {
	Limit      int
	After      *InboxCursor
	UnreadOnly bool
}

// MonitoringLog is an append-only activity record. WorkerID always equals
// the identity that wrote it.
type MonitoringLog struct {
	ID           uuid.UUID       `json:"id"`
	WorkerID     uuid.UUID       `json:"worker_id"`
	ActivityType ActivityType    `json:"activity_type"`
	Description  *string         `json:"description"`
	Location     *string         `json:"location"`
	Status       *ActivityStatus `json:"status"`
	LoggedAt     time.Time       `json:"logged_at"`
}

// Feedback is a rated comment from one profile about another (or about the
// workplace in general, in which case both ends are the author).
type Feedback struct {
	ID           uuid.UUID        `json:"id"`
	FromUserID   uuid.UUID        `json:"from_user_id"`
	ToUserID     uuid.UUID        `json:"to_user_id"`
	FeedbackType string           `json:"feedback_type"`
	Rating       int              `json:"rating"`
	Comments     string           `json:"comments"`
	Category     FeedbackCategory `json:"category"`
	CreatedAt    time.Time        `json:"created_at"`
}
