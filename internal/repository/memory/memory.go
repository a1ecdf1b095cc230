// Package memory is an in-process implementation of the repository
// interfaces. It backs DATABASE_DRIVER=memory and the service tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/apperr"
	"github.com/lalith-99/factorylink/internal/models"
)

// Store holds every table behind one lock. The typed views returned by
// Profiles, Messages and so on share it, so cross-table checks (a message
// receiver must exist) see a consistent snapshot.
type Store struct {
	mu sync.RWMutex

	profiles map[uuid.UUID]models.Profile
	links    map[[2]uuid.UUID]time.Time
	messages map[uuid.UUID]models.Message
	logs     []models.MonitoringLog
	feedback []models.Feedback

	now func() time.Time
}

func New() *Store {
	return &Store{
		profiles: make(map[uuid.UUID]models.Profile),
		links:    make(map[[2]uuid.UUID]time.Time),
		messages: make(map[uuid.UUID]models.Message),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source. Tests use it to produce equal
// created_at values.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Profiles() *ProfileStore             { return &ProfileStore{s} }
func (s *Store) ManagerWorkers() *ManagerWorkerStore { return &ManagerWorkerStore{s} }
func (s *Store) Messages() *MessageStore             { return &MessageStore{s} }
func (s *Store) MonitoringLogs() *MonitoringLogStore { return &MonitoringLogStore{s} }
func (s *Store) Feedbacks() *FeedbackStore           { return &FeedbackStore{s} }

func ctxErr(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type ProfileStore struct{ s *Store }

// cloneProfile copies p so callers never alias the Skills backing array
// or the optional fields held by the store.
func cloneProfile(p models.Profile) *models.Profile {
	c := p
	c.Skills = append([]string{}, p.Skills...)
	if p.Department != nil {
		v := *p.Department
		c.Department = &v
	}
	if p.Position != nil {
		v := *p.Position
		c.Position = &v
	}
	return &c
}

func (r *ProfileStore) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if err := ctxErr(ctx, "insert profile"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.profiles {
		if existing.Email == p.Email {
			return nil, fmt.Errorf("insert profile: %w (profiles_email_key)", apperr.ErrConflict)
		}
	}

	created := *cloneProfile(*p)
	created.ID = uuid.New()
	created.CreatedAt = r.s.now()
	created.UpdatedAt = created.CreatedAt
	r.s.profiles[created.ID] = created

	return cloneProfile(created), nil
}

func (r *ProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if err := ctxErr(ctx, "get profile"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return nil, nil
	}
	return cloneProfile(p), nil
}

func (r *ProfileStore) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if err := ctxErr(ctx, "get profile by email"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.profiles {
		if p.Email == email {
			return cloneProfile(p), nil
		}
	}
	return nil, nil
}

func (r *ProfileStore) Update(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.Profile, error) {
	if err := ctxErr(ctx, "update profile"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return nil, nil
	}
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.Department != nil {
		v := *patch.Department
		p.Department = &v
	}
	if patch.Position != nil {
		v := *patch.Position
		p.Position = &v
	}
	if patch.Skills != nil {
		p.Skills = append([]string{}, (*patch.Skills)...)
	}
	p.UpdatedAt = r.s.now()
	r.s.profiles[id] = p

	return cloneProfile(p), nil
}

type ManagerWorkerStore struct{ s *Store }

func (r *ManagerWorkerStore) AddWorker(ctx context.Context, managerID, workerID uuid.UUID) error {
	if err := ctxErr(ctx, "add worker"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[managerID]; !ok {
		return fmt.Errorf("add worker: %w (manager_workers_manager_id_fkey)", apperr.ErrNotFound)
	}
	if _, ok := r.s.profiles[workerID]; !ok {
		return fmt.Errorf("add worker: %w (manager_workers_worker_id_fkey)", apperr.ErrNotFound)
	}

	key := [2]uuid.UUID{managerID, workerID}
	if _, ok := r.s.links[key]; !ok {
		r.s.links[key] = r.s.now()
	}
	return nil
}

func (r *ManagerWorkerStore) RemoveWorker(ctx context.Context, managerID, workerID uuid.UUID) error {
	if err := ctxErr(ctx, "remove worker"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.links, [2]uuid.UUID{managerID, workerID})
	return nil
}

func (r *ManagerWorkerStore) ListWorkers(ctx context.Context, managerID uuid.UUID) ([]models.Profile, error) {
	if err := ctxErr(ctx, "list workers"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	workers := make([]models.Profile, 0)
	for key := range r.s.links {
		if key[0] != managerID {
			continue
		}
		if p, ok := r.s.profiles[key[1]]; ok {
			workers = append(workers, *cloneProfile(p))
		}
	}
	sort.Slice(workers, func(i, j int) bool {
		if workers[i].FullName != workers[j].FullName {
			return workers[i].FullName < workers[j].FullName
		}
		return bytes.Compare(workers[i].ID[:], workers[j].ID[:]) < 0
	})
	return workers, nil
}

func (r *ManagerWorkerStore) IsManagerOf(ctx context.Context, managerID, workerID uuid.UUID) (bool, error) {
	if err := ctxErr(ctx, "check manager link"); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.links[[2]uuid.UUID{managerID, workerID}]
	return ok, nil
}

type MessageStore struct{ s *Store }

func (r *MessageStore) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	if err := ctxErr(ctx, "insert message"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[m.SenderID]; !ok {
		return nil, fmt.Errorf("insert message: %w (messages_sender_id_fkey)", apperr.ErrNotFound)
	}
	if _, ok := r.s.profiles[m.ReceiverID]; !ok {
		return nil, fmt.Errorf("insert message: %w (messages_receiver_id_fkey)", apperr.ErrNotFound)
	}

	created := *m
	created.ID = uuid.New()
	created.Read = false
	created.CreatedAt = r.s.now()
	r.s.messages[created.ID] = created

	return &created, nil
}

func (r *MessageStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	if err := ctxErr(ctx, "get message"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// inboxBefore orders by created_at descending, then id ascending.
func inboxBefore(a, b models.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func (r *MessageStore) ListInbox(ctx context.Context, receiverID uuid.UUID, q models.InboxQuery) ([]models.InboxMessage, error) {
	if err := ctxErr(ctx, "list inbox"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var cursor *models.Message
	if q.After != nil {
		cursor = &models.Message{ID: q.After.ID, CreatedAt: q.After.CreatedAt}
	}

	out := make([]models.InboxMessage, 0)
	for _, m := range r.s.messages {
		if m.ReceiverID != receiverID {
			continue
		}
		if q.UnreadOnly && m.Read {
			continue
		}
		if cursor != nil && !inboxBefore(*cursor, m) {
			continue
		}
		im := models.InboxMessage{Message: m}
		if sender, ok := r.s.profiles[m.SenderID]; ok {
			im.SenderName = sender.FullName
		}
		out = append(out, im)
	}

	sort.Slice(out, func(i, j int) bool { return inboxBefore(out[i].Message, out[j].Message) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *MessageStore) MarkRead(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	if err := ctxErr(ctx, "mark message read"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, nil
	}
	m.Read = true
	r.s.messages[id] = m
	return &m, nil
}

func (r *MessageStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctxErr(ctx, "delete message"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.messages[id]; !ok {
		return false, nil
	}
	delete(r.s.messages, id)
	return true, nil
}

func (r *MessageStore) CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error) {
	if err := ctxErr(ctx, "count unread messages"); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, m := range r.s.messages {
		if m.ReceiverID == receiverID && !m.Read {
			n++
		}
	}
	return n, nil
}

// MessageCount is the number of stored messages, for tests.
func (r *MessageStore) MessageCount() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.messages)
}

type MonitoringLogStore struct{ s *Store }

func (r *MonitoringLogStore) Create(ctx context.Context, l *models.MonitoringLog) (*models.MonitoringLog, error) {
	if err := ctxErr(ctx, "insert monitoring log"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[l.WorkerID]; !ok {
		return nil, fmt.Errorf("insert monitoring log: %w (monitoring_logs_worker_id_fkey)", apperr.ErrNotFound)
	}

	created := *l
	created.ID = uuid.New()
	created.LoggedAt = r.s.now()
	r.s.logs = append(r.s.logs, created)

	return &created, nil
}

func (r *MonitoringLogStore) ListByWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]models.MonitoringLog, error) {
	if err := ctxErr(ctx, "list monitoring logs"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.MonitoringLog, 0)
	for _, l := range r.s.logs {
		if l.WorkerID == workerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LoggedAt.Equal(out[j].LoggedAt) {
			return out[i].LoggedAt.After(out[j].LoggedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type FeedbackStore struct{ s *Store }

func (r *FeedbackStore) Create(ctx context.Context, f *models.Feedback) (*models.Feedback, error) {
	if err := ctxErr(ctx, "insert feedback"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[f.ToUserID]; !ok {
		return nil, fmt.Errorf("insert feedback: %w (feedbacks_to_user_id_fkey)", apperr.ErrNotFound)
	}

	created := *f
	created.ID = uuid.New()
	created.CreatedAt = r.s.now()
	r.s.feedback = append(r.s.feedback, created)

	return &created, nil
}
