package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lalith-99/factorylink/internal/models"
)

const monitoringColumns = `id, worker_id, activity_type, description, location, status, logged_at`

// MonitoringLogStore appends activity rows. It has no update or delete.
type MonitoringLogStore struct {
	db Querier
}

func NewMonitoringLogStore(db Querier) *MonitoringLogStore {
	return &MonitoringLogStore{db: db}
}

func (s *MonitoringLogStore) Create(ctx context.Context, l *models.MonitoringLog) (*models.MonitoringLog, error) {
	query := `
		INSERT INTO monitoring_logs (worker_id, activity_type, description, location, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + monitoringColumns

	var status *string
	if l.Status != nil {
		v := string(*l.Status)
		status = &v
	}

	created, err := scanMonitoringLog(s.db.QueryRow(ctx, query,
		l.WorkerID, string(l.ActivityType), l.Description, l.Location, status,
	))
	if err != nil {
		return nil, mapError(err, "insert monitoring log")
	}
	return created, nil
}

func (s *MonitoringLogStore) ListByWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]models.MonitoringLog, error) {
	query := `
		SELECT ` + monitoringColumns + `
		FROM monitoring_logs
		WHERE worker_id = $1
		ORDER BY logged_at DESC, id ASC
		LIMIT $2`

	rows, err := s.db.Query(ctx, query, workerID, limit)
	if err != nil {
		return nil, mapError(err, "list monitoring logs")
	}
	defer rows.Close()

	logs := make([]models.MonitoringLog, 0)
	for rows.Next() {
		l, err := scanMonitoringLog(rows)
		if err != nil {
			return nil, mapError(err, "scan monitoring log")
		}
		logs = append(logs, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterate monitoring logs")
	}

	return logs, nil
}

func scanMonitoringLog(row pgx.Row) (*models.MonitoringLog, error) {
	var (
		l            models.MonitoringLog
		activityType string
		status       *string
	)
	err := row.Scan(
		&l.ID,
		&l.WorkerID,
		&activityType,
		&l.Description,
		&l.Location,
		&status,
		&l.LoggedAt,
	)
	if err != nil {
		return nil, err
	}
	l.ActivityType = models.ActivityType(activityType)
	if status != nil {
		st := models.ActivityStatus(*status)
		l.Status = &st
	}
	return &l, nil
}
