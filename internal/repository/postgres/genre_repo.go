package postgres

import (
	"context"

	"github.com/dom/game-catalog/internal/domain"
	"gorm.io/gorm"
)

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *genreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *domain.Genre) error {
	return r.db.WithContext(ctx).Create(genre).Error
}

func (r *genreRepository) GetByID(ctx context.Context, id uint) (*domain.Genre, error) {
	var genre domain.Genre
	err := r.db.WithContext(ctx).First(&genre, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *genreRepository) GetBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	var genre domain.Genre
	err := r.db.WithContext(ctx).First(&genre, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *genreRepository) List(ctx context.Context) ([]*domain.Genre, error) {
	var genres []*domain.Genre
	err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error
	if err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *genreRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	return slugExists(r.db.WithContext(ctx), &domain.Genre{}, slug, excludeID)
}
