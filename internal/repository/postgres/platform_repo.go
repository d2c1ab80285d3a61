package postgres

import (
	"context"

	"github.com/dom/game-catalog/internal/domain"
	"gorm.io/gorm"
)

type platformRepository struct {
	db *gorm.DB
}

func NewPlatformRepository(db *gorm.DB) *platformRepository {
	return &platformRepository{db: db}
}

func (r *platformRepository) Create(ctx context.Context, platform *domain.Platform) error {
	return r.db.WithContext(ctx).Create(platform).Error
}

func (r *platformRepository) Update(ctx context.Context, platform *domain.Platform) error {
	return r.db.WithContext(ctx).Save(platform).Error
}

func (r *platformRepository) GetByID(ctx context.Context, id uint) (*domain.Platform, error) {
	var platform domain.Platform
	err := r.db.WithContext(ctx).First(&platform, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &platform, nil
}

func (r *platformRepository) GetBySlug(ctx context.Context, slug string) (*domain.Platform, error) {
	var platform domain.Platform
	err := r.db.WithContext(ctx).First(&platform, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &platform, nil
}

func (r *platformRepository) ListWithDefaultInstaller(ctx context.Context) ([]*domain.Platform, error) {
	var candidates []*domain.Platform
	err := r.db.WithContext(ctx).
		Where("default_installer IS NOT NULL").
		Order("id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	// JSON null, {} and non-mapping templates are stored but unusable.
	platforms := make([]*domain.Platform, 0, len(candidates))
	for _, p := range candidates {
		if p.HasDefaultInstaller() {
			platforms = append(platforms, p)
		}
	}
	return platforms, nil
}
