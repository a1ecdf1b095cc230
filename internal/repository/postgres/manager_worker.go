package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/models"
)

type ManagerWorkerStore struct {
	db Querier
}

func NewManagerWorkerStore(db Querier) *ManagerWorkerStore {
	return &ManagerWorkerStore{db: db}
}

func (s *ManagerWorkerStore) AddWorker(ctx context.Context, managerID, workerID uuid.UUID) error {
	// Linking is idempotent: a second link is a no-op, not a PK violation.
	query := `
		INSERT INTO manager_workers (manager_id, worker_id, assigned_at)
		VALUES ($1, $2, now())
		ON CONFLICT (manager_id, worker_id) DO NOTHING`

	if _, err := s.db.Exec(ctx, query, managerID, workerID); err != nil {
		return mapError(err, "add worker")
	}
	return nil
}

func (s *ManagerWorkerStore) RemoveWorker(ctx context.Context, managerID, workerID uuid.UUID) error {
	query := `
		DELETE FROM manager_workers
		WHERE manager_id = $1 AND worker_id = $2`

	if _, err := s.db.Exec(ctx, query, managerID, workerID); err != nil {
		return mapError(err, "remove worker")
	}
	return nil
}

func (s *ManagerWorkerStore) ListWorkers(ctx context.Context, managerID uuid.UUID) ([]models.Profile, error) {
	query := `
		SELECT p.id, p.full_name, p.email, p.role, p.department, p.position, p.skills,
		       p.password_hash, p.created_at, p.updated_at
		FROM manager_workers mw
		JOIN profiles p ON p.id = mw.worker_id
		WHERE mw.manager_id = $1
		ORDER BY p.full_name, p.id`

	rows, err := s.db.Query(ctx, query, managerID)
	if err != nil {
		return nil, mapError(err, "list workers")
	}
	defer rows.Close()

	workers := make([]models.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, mapError(err, "scan worker")
		}
		workers = append(workers, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterate workers")
	}

	return workers, nil
}

func (s *ManagerWorkerStore) IsManagerOf(ctx context.Context, managerID, workerID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM manager_workers
			WHERE manager_id = $1 AND worker_id = $2
		)`

	var exists bool
	if err := s.db.QueryRow(ctx, query, managerID, workerID).Scan(&exists); err != nil {
		return false, mapError(err, "check manager link")
	}
	return exists, nil
}
