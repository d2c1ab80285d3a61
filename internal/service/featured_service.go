package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FeaturedItem is a featured entry with its target loaded. Exactly one of
// the target fields is set, matching Ref.Kind.
type FeaturedItem struct {
	*domain.Featured
	Game     *domain.Game
	Company  *domain.Company
	Genre    *domain.Genre
	Platform *domain.Platform
}

type featuredLoader func(ctx context.Context, id uint, item *FeaturedItem) error

type FeaturedService struct {
	featured repository.FeaturedRepository
	loaders  map[domain.FeaturedKind]featuredLoader
	logger   *zap.Logger
}

func NewFeaturedService(repos *repository.Repositories, logger *zap.Logger) *FeaturedService {
	s := &FeaturedService{
		featured: repos.Featured,
		logger:   logger,
	}
	s.loaders = map[domain.FeaturedKind]featuredLoader{
		domain.FeaturedGame: func(ctx context.Context, id uint, item *FeaturedItem) (err error) {
			item.Game, err = repos.Game.GetByID(ctx, id)
			return err
		},
		domain.FeaturedCompany: func(ctx context.Context, id uint, item *FeaturedItem) (err error) {
			item.Company, err = repos.Company.GetByID(ctx, id)
			return err
		},
		domain.FeaturedGenre: func(ctx context.Context, id uint, item *FeaturedItem) (err error) {
			item.Genre, err = repos.Genre.GetByID(ctx, id)
			return err
		},
		domain.FeaturedPlatform: func(ctx context.Context, id uint, item *FeaturedItem) (err error) {
			item.Platform, err = repos.Platform.GetByID(ctx, id)
			return err
		},
	}
	return s
}

// Resolve loads the target of a featured entry.
func (s *FeaturedService) Resolve(ctx context.Context, featured *domain.Featured) (*FeaturedItem, error) {
	load, ok := s.loaders[featured.Ref.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFeaturedKind, featured.Ref.Kind)
	}
	item := &FeaturedItem{Featured: featured}
	if err := load(ctx, featured.Ref.ID, item); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFeaturedTargetNotFound, featured.Ref)
		}
		return nil, err
	}
	return item, nil
}

// Create stores a featured entry after checking its target exists.
func (s *FeaturedService) Create(ctx context.Context, featured *domain.Featured) (*FeaturedItem, error) {
	item, err := s.Resolve(ctx, featured)
	if err != nil {
		return nil, err
	}
	if err := s.featured.Create(ctx, featured); err != nil {
		return nil, fmt.Errorf("create featured %s: %w", featured.Ref, err)
	}
	return item, nil
}

// List returns the newest featured entries. Entries whose target was deleted
// are skipped.
func (s *FeaturedService) List(ctx context.Context, limit int) ([]*FeaturedItem, error) {
	entries, err := s.featured.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]*FeaturedItem, 0, len(entries))
	for _, entry := range entries {
		item, err := s.Resolve(ctx, entry)
		if err != nil {
			if errors.Is(err, domain.ErrFeaturedTargetNotFound) || errors.Is(err, domain.ErrUnknownFeaturedKind) {
				s.logger.Warn("skipping featured entry", zap.Uint("id", entry.ID), zap.Error(err))
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
