package profile

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/apperr"
	"github.com/lalith-99/factorylink/internal/auth"
	"github.com/lalith-99/factorylink/internal/models"
	"github.com/lalith-99/factorylink/internal/repository"
	"go.uber.org/zap"
)

type Service struct {
	profiles repository.ProfileRepository
	links    repository.ManagerWorkerRepository
	identity auth.Provider
	logger   *zap.Logger
}

func New(
	profiles repository.ProfileRepository,
	links repository.ManagerWorkerRepository,
	identity auth.Provider,
	logger *zap.Logger,
) *Service {
	return &Service{
		profiles: profiles,
		links:    links,
		identity: identity,
		logger:   logger.With(zap.String("service", "profile")),
	}
}

func (s *Service) caller(ctx context.Context) (auth.Identity, error) {
	id, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return auth.Identity{}, apperr.ErrUnauthenticated
	}
	return id, nil
}

// Me returns the caller's own profile.
func (s *Service) Me(ctx context.Context) (*models.Profile, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.profiles.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	// A valid token for a profile that no longer exists.
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

// Update patches a profile. The owner may always edit it; a manager may
// edit the workers linked to them.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.Profile, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	if patch.Empty() {
		return nil, apperr.Validation("body", "no fields to update")
	}
	if patch.FullName != nil && strings.TrimSpace(*patch.FullName) == "" {
		return nil, apperr.Validation("full_name", "must not be blank")
	}

	if caller.ID != id {
		allowed, err := s.managesWorker(ctx, caller, id)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, apperr.ErrForbidden
		}
	}

	p, err := s.profiles.Update(ctx, id, patch)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}

	s.logger.Info("profile updated",
		zap.String("profile_id", id.String()),
		zap.String("caller_id", caller.ID.String()),
	)
	return p, nil
}

func (s *Service) managesWorker(ctx context.Context, caller auth.Identity, workerID uuid.UUID) (bool, error) {
	if caller.Role != models.RoleManager {
		return false, nil
	}
	ok, err := s.links.IsManagerOf(ctx, caller.ID, workerID)
	if err != nil {
		return false, apperr.Persistence(err)
	}
	return ok, nil
}

func (s *Service) requireManager(ctx context.Context) (auth.Identity, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return auth.Identity{}, err
	}
	if caller.Role != models.RoleManager {
		return auth.Identity{}, apperr.ErrForbidden
	}
	return caller, nil
}

// LinkWorker puts a worker under the calling manager. Linking twice is a
// no-op.
func (s *Service) LinkWorker(ctx context.Context, workerID uuid.UUID) error {
	caller, err := s.requireManager(ctx)
	if err != nil {
		return err
	}

	worker, err := s.profiles.GetByID(ctx, workerID)
	if err != nil {
		return apperr.Persistence(err)
	}
	if worker == nil {
		return apperr.ErrNotFound
	}
	if worker.Role != models.RoleWorker {
		return apperr.Validation("worker_id", "profile is not a worker")
	}

	if err := s.links.AddWorker(ctx, caller.ID, workerID); err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

func (s *Service) UnlinkWorker(ctx context.Context, workerID uuid.UUID) error {
	caller, err := s.requireManager(ctx)
	if err != nil {
		return err
	}
	if err := s.links.RemoveWorker(ctx, caller.ID, workerID); err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

func (s *Service) ListWorkers(ctx context.Context) ([]models.Profile, error) {
	caller, err := s.requireManager(ctx)
	if err != nil {
		return nil, err
	}
	workers, err := s.links.ListWorkers(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return workers, nil
}
