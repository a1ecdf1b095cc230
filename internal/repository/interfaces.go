package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/models"
)

// Every method takes ctx first: request cancellation reaches the store.
//
// Lookups return (nil, nil) when the row does not exist; callers decide
// whether that is an error. Write failures come back wrapped with
// fmt.Errorf("verb noun: %w").

// ProfileRepository stores platform users.
type ProfileRepository interface {
	// Create inserts a profile and returns it with ID and timestamps set.
	// A duplicate email yields apperr.ErrConflict.
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)

	// GetByEmail matches the email exactly; there is no case folding or
	// partial matching.
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)

	// Update applies the non-nil patch fields. Returns nil, nil if the
	// profile does not exist.
	Update(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.Profile, error)
}

// ManagerWorkerRepository handles which manager supervises which worker.
type ManagerWorkerRepository interface {
	// AddWorker links a worker to a manager. Linking twice is a no-op.
	AddWorker(ctx context.Context, managerID, workerID uuid.UUID) error

	// RemoveWorker unlinks a worker. No-op if not linked.
	RemoveWorker(ctx context.Context, managerID, workerID uuid.UUID) error

	// ListWorkers returns the profiles linked to a manager, by name.
	ListWorkers(ctx context.Context, managerID uuid.UUID) ([]models.Profile, error)

	IsManagerOf(ctx context.Context, managerID, workerID uuid.UUID) (bool, error)
}

// MessageRepository handles direct message persistence.
type MessageRepository interface {
	// Create inserts a message; the store assigns ID, CreatedAt and read=false.
	Create(ctx context.Context, m *models.Message) (*models.Message, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error)

	// ListInbox returns messages received by receiverID, newest first,
	// ties broken by id ascending, each joined with the sender's name.
	// Returns an empty slice (not nil) when there are none.
	ListInbox(ctx context.Context, receiverID uuid.UUID, q models.InboxQuery) ([]models.InboxMessage, error)

	// MarkRead sets read=true. Returns nil, nil if the message is gone.
	MarkRead(ctx context.Context, id uuid.UUID) (*models.Message, error)

	// Delete removes the message and reports whether a row was deleted.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error)
}

// MonitoringLogRepository is append-only: there is no update or delete.
type MonitoringLogRepository interface {
	// Create inserts a log row; the store assigns ID and LoggedAt.
	Create(ctx context.Context, l *models.MonitoringLog) (*models.MonitoringLog, error)

	// ListByWorker returns a worker's logs, newest first.
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]models.MonitoringLog, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *models.Feedback) (*models.Feedback, error)
}
