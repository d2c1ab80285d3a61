package postgres

import (
	"context"

	"github.com/dom/game-catalog/internal/domain"
	"gorm.io/gorm"
)

type featuredRepository struct {
	db *gorm.DB
}

func NewFeaturedRepository(db *gorm.DB) *featuredRepository {
	return &featuredRepository{db: db}
}

func (r *featuredRepository) Create(ctx context.Context, featured *domain.Featured) error {
	return r.db.WithContext(ctx).Create(featured).Error
}

// List returns the newest featured items first. limit <= 0 returns all.
func (r *featuredRepository) List(ctx context.Context, limit int) ([]*domain.Featured, error) {
	var items []*domain.Featured
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
