package postgres

import (
	"context"

	"github.com/dom/game-catalog/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type libraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) *libraryRepository {
	return &libraryRepository{db: db}
}

func orderGamesByName(db *gorm.DB) *gorm.DB {
	return db.Order("games.name ASC")
}

func (r *libraryRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.GameLibrary, error) {
	var library domain.GameLibrary
	err := r.db.WithContext(ctx).
		Where(domain.GameLibrary{UserID: userID}).
		FirstOrCreate(&library).Error
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Preload("Games", orderGamesByName).
		First(&library, "id = ?", library.ID).Error
	if err != nil {
		return nil, err
	}
	return &library, nil
}

func (r *libraryRepository) GetByUsername(ctx context.Context, username string) (*domain.GameLibrary, error) {
	var library domain.GameLibrary
	err := r.db.WithContext(ctx).
		Preload("Games", orderGamesByName).
		Where("user_id IN (?)", r.db.WithContext(ctx).Model(&domain.User{}).Select("id").Where("username = ?", username)).
		First(&library).Error
	if err != nil {
		return nil, err
	}
	return &library, nil
}

func (r *libraryRepository) AddGame(ctx context.Context, libraryID uint, game *domain.Game) error {
	library := &domain.GameLibrary{ID: libraryID}
	return r.db.WithContext(ctx).Model(library).Omit("Games.*").Association("Games").Append(game)
}

func (r *libraryRepository) RemoveGame(ctx context.Context, libraryID uint, game *domain.Game) error {
	library := &domain.GameLibrary{ID: libraryID}
	return r.db.WithContext(ctx).Model(library).Association("Games").Delete(game)
}
