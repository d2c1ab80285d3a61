package postgres

import (
	"context"

	"github.com/dom/game-catalog/internal/domain"
	"gorm.io/gorm"
)

type runnerRepository struct {
	db *gorm.DB
}

func NewRunnerRepository(db *gorm.DB) *runnerRepository {
	return &runnerRepository{db: db}
}

func (r *runnerRepository) Create(ctx context.Context, runner *domain.Runner) error {
	return r.db.WithContext(ctx).Create(runner).Error
}

func (r *runnerRepository) GetBySlug(ctx context.Context, slug string) (*domain.Runner, error) {
	var runner domain.Runner
	err := r.db.WithContext(ctx).First(&runner, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &runner, nil
}

func (r *runnerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Runner{}, "id = ?", id).Error
}
