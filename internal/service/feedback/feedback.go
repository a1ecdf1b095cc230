package feedback

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/apperr"
	"github.com/lalith-99/factorylink/internal/auth"
	"github.com/lalith-99/factorylink/internal/models"
	"github.com/lalith-99/factorylink/internal/repository"
	"go.uber.org/zap"
)

const (
	TypeWorkerToWorker = "worker_to_worker"
	MaxCommentsLen     = 2000
)

// Input is a feedback submission. A nil ToUserID is general workplace
// feedback and is addressed to the author.
type Input struct {
	ToUserID *uuid.UUID
	Rating   int
	Comments string
	Category string
}

type Service struct {
	feedback repository.FeedbackRepository
	identity auth.Provider
	logger   *zap.Logger
}

func New(feedback repository.FeedbackRepository, identity auth.Provider, logger *zap.Logger) *Service {
	return &Service{
		feedback: feedback,
		identity: identity,
		logger:   logger.With(zap.String("service", "feedback")),
	}
}

func (s *Service) Submit(ctx context.Context, in Input) (*models.Feedback, error) {
	caller, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return nil, apperr.ErrUnauthenticated
	}

	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.Validation("rating", "must be between 1 and 5")
	}
	if strings.TrimSpace(in.Comments) == "" {
		return nil, apperr.Validation("comments", "is required")
	}
	if utf8.RuneCountInString(in.Comments) > MaxCommentsLen {
		return nil, apperr.Validation("comments", "must be at most 2000 characters")
	}

	to := caller.ID
	if in.ToUserID != nil {
		to = *in.ToUserID
	}

	created, err := s.feedback.Create(ctx, &models.Feedback{
		FromUserID:   caller.ID,
		ToUserID:     to,
		FeedbackType: TypeWorkerToWorker,
		Rating:       in.Rating,
		Comments:     in.Comments,
		Category:     models.ParseFeedbackCategory(in.Category),
	})
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	s.logger.Info("feedback submitted",
		zap.String("from_user_id", caller.ID.String()),
		zap.String("category", created.Category.Describe()),
	)
	return created, nil
}
