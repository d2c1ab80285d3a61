package repository

import (
	"context"

	"github.com/dom/game-catalog/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// GameFilter narrows a game listing. Zero values do not filter.
type GameFilter struct {
	Slugs          []string
	Search         string
	PublicOnly     bool
	WithInstallers bool
	Limit          int
	Offset         int
}

type GameRepository interface {
	Create(ctx context.Context, game *domain.Game) error
	// Update saves the game row and replaces its platform and genre links.
	Update(ctx context.Context, game *domain.Game) error
	GetByID(ctx context.Context, id uint) (*domain.Game, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Game, error)
	// ListBySlugPrefix returns games whose slug starts with prefix, with
	// their platforms, ordered by name.
	ListBySlugPrefix(ctx context.Context, prefix string) ([]*domain.Game, error)
	// ListByPlatformID returns the games linked to a platform, by id.
	ListByPlatformID(ctx context.Context, platformID uint) ([]*domain.Game, error)
	List(ctx context.Context, filter GameFilter) ([]*domain.Game, int64, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
}

type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, id uint) (*domain.Company, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Company, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
}

type GenreRepository interface {
	Create(ctx context.Context, genre *domain.Genre) error
	GetByID(ctx context.Context, id uint) (*domain.Genre, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	List(ctx context.Context) ([]*domain.Genre, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
}

type PlatformRepository interface {
	Create(ctx context.Context, platform *domain.Platform) error
	Update(ctx context.Context, platform *domain.Platform) error
	GetByID(ctx context.Context, id uint) (*domain.Platform, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Platform, error)
	// ListWithDefaultInstaller returns platforms carrying a template, by id.
	ListWithDefaultInstaller(ctx context.Context) ([]*domain.Platform, error)
}

type RunnerRepository interface {
	Create(ctx context.Context, runner *domain.Runner) error
	GetBySlug(ctx context.Context, slug string) (*domain.Runner, error)
	Delete(ctx context.Context, id uint) error
}

type InstallerRepository interface {
	Create(ctx context.Context, installer *domain.Installer) error
	Update(ctx context.Context, installer *domain.Installer) error
	// GetBySlug loads the installer with its game and runner.
	GetBySlug(ctx context.Context, slug string) (*domain.Installer, error)
	ListByGameSlug(ctx context.Context, gameSlug string, publishedOnly bool) ([]*domain.Installer, error)
	CountByGameID(ctx context.Context, gameID uint, publishedOnly bool) (int64, error)
	// ListByRunnerID returns the installers targeting a runner, with their game.
	ListByRunnerID(ctx context.Context, runnerID uint) ([]*domain.Installer, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
}

type InstallerIssueRepository interface {
	Create(ctx context.Context, issue *domain.InstallerIssue) error
	ListByInstallerID(ctx context.Context, installerID uint) ([]*domain.InstallerIssue, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.GameSubmission) error
	// GetPendingByGameID returns the oldest submission not yet accepted.
	GetPendingByGameID(ctx context.Context, gameID uint) (*domain.GameSubmission, error)
	Update(ctx context.Context, submission *domain.GameSubmission) error
}

type LibraryRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.GameLibrary, error)
	GetByUsername(ctx context.Context, username string) (*domain.GameLibrary, error)
	AddGame(ctx context.Context, libraryID uint, game *domain.Game) error
	RemoveGame(ctx context.Context, libraryID uint, game *domain.Game) error
}

type ScreenshotRepository interface {
	Create(ctx context.Context, screenshot *domain.Screenshot) error
	ListPublishedByGameID(ctx context.Context, gameID uint) ([]*domain.Screenshot, error)
}

type FeaturedRepository interface {
	Create(ctx context.Context, featured *domain.Featured) error
	List(ctx context.Context, limit int) ([]*domain.Featured, error)
}

type Repositories struct {
	User           UserRepository
	Session        SessionRepository
	Game           GameRepository
	Company        CompanyRepository
	Genre          GenreRepository
	Platform       PlatformRepository
	Runner         RunnerRepository
	Installer      InstallerRepository
	InstallerIssue InstallerIssueRepository
	Submission     SubmissionRepository
	Library        LibraryRepository
	Screenshot     ScreenshotRepository
	Featured       FeaturedRepository
}
