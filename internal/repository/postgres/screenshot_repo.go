package postgres

import (
	"context"

	"github.com/dom/game-catalog/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type screenshotRepository struct {
	db *gorm.DB
}

func NewScreenshotRepository(db *gorm.DB) *screenshotRepository {
	return &screenshotRepository{db: db}
}

func (r *screenshotRepository) Create(ctx context.Context, screenshot *domain.Screenshot) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(screenshot).Error
}

func (r *screenshotRepository) ListPublishedByGameID(ctx context.Context, gameID uint) ([]*domain.Screenshot, error) {
	var screenshots []*domain.Screenshot
	err := r.db.WithContext(ctx).
		Preload("Game").
		Where("game_id = ? AND published = ?", gameID, true).
		Order("uploaded_at ASC").
		Order("id ASC").
		Find(&screenshots).Error
	if err != nil {
		return nil, err
	}
	return screenshots, nil
}
