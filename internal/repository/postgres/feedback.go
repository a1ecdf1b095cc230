package postgres

import (
	"context"

	"github.com/lalith-99/factorylink/internal/models"
)

type FeedbackStore struct {
	db Querier
}

func NewFeedbackStore(db Querier) *FeedbackStore {
	return &FeedbackStore{db: db}
}

func (s *FeedbackStore) Create(ctx context.Context, f *models.Feedback) (*models.Feedback, error) {
	query := `
		INSERT INTO feedbacks (from_user_id, to_user_id, feedback_type, rating, comments, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, from_user_id, to_user_id, feedback_type, rating, comments, category, created_at`

	var (
		created  models.Feedback
		category string
	)
	err := s.db.QueryRow(ctx, query,
		f.FromUserID, f.ToUserID, f.FeedbackType, f.Rating, f.Comments, string(f.Category),
	).Scan(
		&created.ID,
		&created.FromUserID,
		&created.ToUserID,
		&created.FeedbackType,
		&created.Rating,
		&created.Comments,
		&category,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err, "insert feedback")
	}
	created.Category = models.FeedbackCategory(category)
	return &created, nil
}
