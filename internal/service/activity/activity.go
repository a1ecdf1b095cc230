// Package activity records self-reported worker activity. Every log is
// attributed to the caller taken from the request context.
package activity

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/lalith-99/factorylink/internal/apperr"
	"github.com/lalith-99/factorylink/internal/auth"
	"github.com/lalith-99/factorylink/internal/models"
	"github.com/lalith-99/factorylink/internal/repository"
	"go.uber.org/zap"
)

const (
	MaxActivityTypeLen = 100
	MaxDescriptionLen  = 500
	MaxLocationLen     = 200
	MaxStatusLen       = 50

	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Input is one activity report. Empty optional fields are stored as NULL.
type Input struct {
	ActivityType string
	Description  string
	Location     string
	Status       string
}

// Validate checks field lengths in a fixed order and returns the first
// failure. Values outside the known activity and status sets are accepted.
func (in Input) Validate() error {
	if in.ActivityType == "" {
		return apperr.Validation("activity_type", "is required")
	}
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"activity_type", in.ActivityType, MaxActivityTypeLen},
		{"description", in.Description, MaxDescriptionLen},
		{"location", in.Location, MaxLocationLen},
		{"status", in.Status, MaxStatusLen},
	}
	for _, c := range checks {
		if utf8.RuneCountInString(c.value) > c.max {
			return apperr.Validation(c.field, fmt.Sprintf("must be at most %d characters", c.max))
		}
	}
	return nil
}

type Service struct {
	logs     repository.MonitoringLogRepository
	identity auth.Provider
	logger   *zap.Logger
}

func New(logs repository.MonitoringLogRepository, identity auth.Provider, logger *zap.Logger) *Service {
	return &Service{
		logs:     logs,
		identity: identity,
		logger:   logger.With(zap.String("service", "activity")),
	}
}

// LogActivity validates in and appends one log row for the caller.
func (s *Service) LogActivity(ctx context.Context, in Input) (*models.MonitoringLog, error) {
	caller, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return nil, apperr.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	l := &models.MonitoringLog{
		WorkerID:     caller.ID,
		ActivityType: models.ActivityType(in.ActivityType),
		Description:  optional(in.Description),
		Location:     optional(in.Location),
	}
	if in.Status != "" {
		st := models.ActivityStatus(in.Status)
		l.Status = &st
	}

	created, err := s.logs.Create(ctx, l)
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	s.logger.Debug("activity logged",
		zap.String("worker_id", caller.ID.String()),
		zap.String("activity_type", created.ActivityType.Describe()),
	)
	return created, nil
}

// ListMine returns the caller's own logs, newest first.
func (s *Service) ListMine(ctx context.Context, limit int) ([]models.MonitoringLog, error) {
	caller, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return nil, apperr.ErrUnauthenticated
	}

	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	logs, err := s.logs.ListByWorker(ctx, caller.ID, limit)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return logs, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
