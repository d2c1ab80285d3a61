package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dom/game-catalog/internal/cache"
	"github.com/dom/game-catalog/internal/document"
	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/repository"
	"github.com/dom/game-catalog/internal/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const catalogSlugMaxLen = 50

// CatalogService manages the reference entities games point at: companies,
// genres, platforms and runners.
type CatalogService struct {
	companies  repository.CompanyRepository
	genres     repository.GenreRepository
	platforms  repository.PlatformRepository
	runners    repository.RunnerRepository
	games      repository.GameRepository
	installers repository.InstallerRepository
	cache      cache.InstallerCache
	logger     *zap.Logger
}

func NewCatalogService(repos *repository.Repositories, installerCache cache.InstallerCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		companies:  repos.Company,
		genres:     repos.Genre,
		platforms:  repos.Platform,
		runners:    repos.Runner,
		games:      repos.Game,
		installers: repos.Installer,
		cache:      installerCache,
		logger:     logger,
	}
}

// SaveCompany stores a company. Its slug always follows the current name.
func (s *CatalogService) SaveCompany(ctx context.Context, company *domain.Company) error {
	company.Name = strings.TrimSpace(company.Name)
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return s.companies.SlugExists(ctx, candidate, company.ID)
	}
	generated, err := slug.Unique(ctx, company.Name, catalogSlugMaxLen, exists)
	if err != nil {
		return fmt.Errorf("generate company slug: %w", err)
	}
	company.Slug = generated

	if company.ID == 0 {
		return s.companies.Create(ctx, company)
	}
	return s.companies.Update(ctx, company)
}

func (s *CatalogService) GetCompany(ctx context.Context, companySlug string) (*domain.Company, error) {
	company, err := s.companies.GetBySlug(ctx, companySlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

// CreateGenre stores a genre, deriving the slug from the name when none is
// given.
func (s *CatalogService) CreateGenre(ctx context.Context, genre *domain.Genre) error {
	if genre.Slug == "" {
		exists := func(ctx context.Context, candidate string) (bool, error) {
			return s.genres.SlugExists(ctx, candidate, genre.ID)
		}
		generated, err := slug.Unique(ctx, genre.Name, catalogSlugMaxLen, exists)
		if err != nil {
			return fmt.Errorf("generate genre slug: %w", err)
		}
		genre.Slug = generated
	}
	return s.genres.Create(ctx, genre)
}

func (s *CatalogService) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	return s.genres.List(ctx)
}

func (s *CatalogService) GetPlatform(ctx context.Context, platformSlug string) (*domain.Platform, error) {
	platform, err := s.platforms.GetBySlug(ctx, platformSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlatformNotFound
		}
		return nil, err
	}
	return platform, nil
}

// SetDefaultInstaller replaces the template of a platform. A nil or empty
// template removes it.
func (s *CatalogService) SetDefaultInstaller(ctx context.Context, platformSlug string, template *document.Map) (*domain.Platform, error) {
	platform, err := s.GetPlatform(ctx, platformSlug)
	if err != nil {
		return nil, err
	}
	if err := platform.SetDefaultInstaller(template); err != nil {
		return nil, err
	}
	if err := s.platforms.Update(ctx, platform); err != nil {
		return nil, fmt.Errorf("update platform %q: %w", platformSlug, err)
	}

	games, err := s.games.ListByPlatformID(ctx, platform.ID)
	if err != nil {
		s.logger.Warn("failed to list platform games for cache invalidation",
			zap.String("platform", platform.Slug), zap.Error(err))
	}
	stale := make([]string, 0, 2*len(games))
	for _, g := range games {
		stale = append(stale, g.Slug, domain.AutoInstallerSlug(g.Slug, platform.Slug))
	}
	invalidateInstallerCache(ctx, s.cache, s.logger, stale...)

	s.logger.Info("platform default installer changed",
		zap.String("platform", platform.Slug),
		zap.Bool("enabled", platform.HasDefaultInstaller()))
	return platform, nil
}

func (s *CatalogService) CreateRunner(ctx context.Context, runner *domain.Runner) error {
	if runner.Slug == "" {
		runner.Slug = slug.Make(runner.Name)
	}
	return s.runners.Create(ctx, runner)
}

// DeleteRunner removes a runner. Installers targeting it keep a dangling
// reference and render an empty runner.
func (s *CatalogService) DeleteRunner(ctx context.Context, runnerSlug string) error {
	runner, err := s.runners.GetBySlug(ctx, runnerSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRunnerNotFound
		}
		return err
	}
	installers, err := s.installers.ListByRunnerID(ctx, runner.ID)
	if err != nil {
		return fmt.Errorf("list installers of runner %q: %w", runner.Slug, err)
	}
	if err := s.runners.Delete(ctx, runner.ID); err != nil {
		return err
	}

	stale := make([]string, 0, 2*len(installers))
	for _, inst := range installers {
		stale = append(stale, inst.Slug)
		if inst.Game != nil {
			stale = append(stale, inst.Game.Slug)
		}
	}
	invalidateInstallerCache(ctx, s.cache, s.logger, stale...)
	s.logger.Info("runner deleted", zap.String("runner", runner.Slug))
	return nil
}
