package postgres

import (
	"context"

	"github.com/dom/game-catalog/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *domain.GameSubmission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(submission).Error
}

func (r *submissionRepository) GetPendingByGameID(ctx context.Context, gameID uint) (*domain.GameSubmission, error) {
	var submission domain.GameSubmission
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Game").
		Where("game_id = ? AND accepted_at IS NULL", gameID).
		Order("created_at ASC").
		Order("id ASC").
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *domain.GameSubmission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(submission).Error
}
