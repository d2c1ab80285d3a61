package postgres

import (
	"context"
	"strings"

	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *gameRepository {
	return &gameRepository{db: db}
}

// Create inserts the game with its platform and genre links. Linked rows and
// companies must already exist.
func (r *gameRepository) Create(ctx context.Context, game *domain.Game) error {
	return r.db.WithContext(ctx).
		Omit("Platforms.*", "Genres.*", "Publisher", "Developer", "Metadata").
		Create(game).Error
}

func (r *gameRepository) Update(ctx context.Context, game *domain.Game) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(game).Error; err != nil {
			return err
		}
		if err := tx.Model(game).Association("Platforms").Replace(game.Platforms); err != nil {
			return err
		}
		return tx.Model(game).Association("Genres").Replace(game.Genres)
	})
}

func (r *gameRepository) detailed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Platforms", orderPlatforms).
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name ASC") }).
		Preload("Publisher").
		Preload("Developer").
		Preload("Metadata")
}

func (r *gameRepository) GetByID(ctx context.Context, id uint) (*domain.Game, error) {
	var game domain.Game
	err := r.detailed(ctx).First(&game, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) GetBySlug(ctx context.Context, slug string) (*domain.Game, error) {
	var game domain.Game
	err := r.detailed(ctx).First(&game, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) ListBySlugPrefix(ctx context.Context, prefix string) ([]*domain.Game, error) {
	var games []*domain.Game
	err := r.db.WithContext(ctx).
		Preload("Platforms", orderPlatforms).
		Where("slug LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("name ASC").
		Order("id ASC").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

func (r *gameRepository) ListByPlatformID(ctx context.Context, platformID uint) ([]*domain.Game, error) {
	var games []*domain.Game
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.WithContext(ctx).Table("game_platforms").Select("game_id").Where("platform_id = ?", platformID)).
		Order("id ASC").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

func (r *gameRepository) List(ctx context.Context, filter repository.GameFilter) ([]*domain.Game, int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Model(&domain.Game{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var games []*domain.Game
	q := r.filtered(ctx, filter).
		Preload("Platforms", orderPlatforms).
		Order("name ASC").
		Order("id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Find(&games).Error; err != nil {
		return nil, 0, err
	}
	return games, count, nil
}

func (r *gameRepository) filtered(ctx context.Context, filter repository.GameFilter) *gorm.DB {
	q := r.db.WithContext(ctx)
	if len(filter.Slugs) > 0 {
		q = q.Where("slug IN ?", filter.Slugs)
	}
	if filter.Search != "" {
		q = q.Where("slug LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(filter.Search))+"%")
	}
	if filter.PublicOnly || filter.WithInstallers {
		q = q.Where("is_public = ?", true)
	}
	if filter.WithInstallers {
		q = q.Where(
			"(EXISTS (SELECT 1 FROM installers WHERE installers.game_id = games.id AND installers.published = ?) "+
				"OR EXISTS (SELECT 1 FROM game_platforms JOIN platforms ON platforms.id = game_platforms.platform_id "+
				"WHERE game_platforms.game_id = games.id AND platforms.default_installer IS NOT NULL))",
			true,
		)
	}
	return q
}

func (r *gameRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	return slugExists(r.db.WithContext(ctx), &domain.Game{}, slug, excludeID)
}
