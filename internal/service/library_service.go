package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/repository"
	"gorm.io/gorm"
)

type LibraryService struct {
	libraries repository.LibraryRepository
	games     repository.GameRepository
}

func NewLibraryService(libraries repository.LibraryRepository, games repository.GameRepository) *LibraryService {
	return &LibraryService{
		libraries: libraries,
		games:     games,
	}
}

// GetByUsername returns the library of a user. Users who never added a game
// have no library.
func (s *LibraryService) GetByUsername(ctx context.Context, username string) (*domain.GameLibrary, error) {
	library, err := s.libraries.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLibraryNotFound
		}
		return nil, err
	}
	return library, nil
}

func (s *LibraryService) AddGame(ctx context.Context, actor Actor, gameSlug string) (*domain.GameLibrary, error) {
	library, game, err := s.load(ctx, actor, gameSlug)
	if err != nil {
		return nil, err
	}
	if library.Contains(game.ID) {
		return nil, domain.ErrGameAlreadyInLibrary
	}
	if err := s.libraries.AddGame(ctx, library.ID, game); err != nil {
		return nil, fmt.Errorf("add %q to library: %w", gameSlug, err)
	}
	library.Games = append(library.Games, game)
	return library, nil
}

// RemoveGame drops a game from the actor's library. Removing a game that is
// not in the library succeeds.
func (s *LibraryService) RemoveGame(ctx context.Context, actor Actor, gameSlug string) (*domain.GameLibrary, error) {
	library, game, err := s.load(ctx, actor, gameSlug)
	if err != nil {
		return nil, err
	}
	if err := s.libraries.RemoveGame(ctx, library.ID, game); err != nil {
		return nil, fmt.Errorf("remove %q from library: %w", gameSlug, err)
	}

	kept := library.Games[:0]
	for _, g := range library.Games {
		if g.ID != game.ID {
			kept = append(kept, g)
		}
	}
	library.Games = kept
	return library, nil
}

func (s *LibraryService) load(ctx context.Context, actor Actor, gameSlug string) (*domain.GameLibrary, *domain.Game, error) {
	game, err := s.games.GetBySlug(ctx, gameSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrGameNotFound
		}
		return nil, nil, err
	}
	library, err := s.libraries.GetOrCreate(ctx, actor.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("load library: %w", err)
	}
	return library, game, nil
}
