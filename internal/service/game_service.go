package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/game-catalog/internal/cache"
	"github.com/dom/game-catalog/internal/config"
	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/notify"
	"github.com/dom/game-catalog/internal/repository"
	"github.com/dom/game-catalog/internal/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	GameSlugMaxLen = 50

	DefaultPageSize = 25
	MaxPageSize     = 100
)

type GameService struct {
	games       repository.GameRepository
	installers  repository.InstallerRepository
	submissions repository.SubmissionRepository
	screenshots repository.ScreenshotRepository
	platforms   repository.PlatformRepository
	genres      repository.GenreRepository
	companies   repository.CompanyRepository
	notifier    notify.Sender
	cache       cache.InstallerCache
	cfg         *config.Config
	logger      *zap.Logger
	now         func() time.Time
}

func NewGameService(repos *repository.Repositories, notifier notify.Sender, installerCache cache.InstallerCache, cfg *config.Config, logger *zap.Logger) *GameService {
	return &GameService{
		games:       repos.Game,
		installers:  repos.Installer,
		submissions: repos.Submission,
		screenshots: repos.Screenshot,
		platforms:   repos.Platform,
		genres:      repos.Genre,
		companies:   repos.Company,
		notifier:    notifier,
		cache:       installerCache,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *GameService) Get(ctx context.Context, gameSlug string) (*domain.Game, error) {
	game, err := s.games.GetBySlug(ctx, gameSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}

// HasInstaller is true when the game has a stored installer or at least one
// of its platforms provides a default one. Platforms must be loaded.
func (s *GameService) HasInstaller(ctx context.Context, game *domain.Game) (bool, error) {
	count, err := s.installers.CountByGameID(ctx, game.ID, false)
	if err != nil {
		return false, err
	}
	return count > 0 || len(game.DefaultInstallers()) > 0, nil
}

type GameListInput struct {
	Slugs          []string
	Search         string
	WithInstallers bool
	Page           int
	PageSize       int
}

type GamePage struct {
	Games    []*domain.Game
	Count    int64
	Page     int
	PageSize int
}

func (p *GamePage) HasNext() bool {
	return int64(p.Page*p.PageSize) < p.Count
}

func (p *GamePage) HasPrevious() bool {
	return p.Page > 1
}

func (s *GameService) List(ctx context.Context, input GameListInput) (*GamePage, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	games, count, err := s.games.List(ctx, repository.GameFilter{
		Slugs:          input.Slugs,
		Search:         strings.TrimSpace(input.Search),
		WithInstallers: input.WithInstallers,
		Limit:          pageSize,
		Offset:         (page - 1) * pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	return &GamePage{Games: games, Count: count, Page: page, PageSize: pageSize}, nil
}

// savePlan holds what prepareSave found out about a pending game write.
type savePlan struct {
	// submission is accepted once the write succeeds. It is nil unless the
	// save is the game's first publication.
	submission *domain.GameSubmission

	staleSlugs []string
}

// prepareSave derives a missing slug and looks up the submission the
// write will accept. It changes nothing in the store.
func (s *GameService) prepareSave(ctx context.Context, game *domain.Game) (*savePlan, error) {
	if game.Slug == "" {
		exists := func(ctx context.Context, candidate string) (bool, error) {
			return s.games.SlugExists(ctx, candidate, game.ID)
		}
		generated, err := slug.Unique(ctx, game.Name, GameSlugMaxLen, exists)
		if err != nil {
			return nil, fmt.Errorf("generate game slug: %w", err)
		}
		game.Slug = generated
	}

	plan := &savePlan{staleSlugs: gameInstallerSlugs(game)}

	// New games have no stored state and nothing to accept.
	if game.ID == 0 {
		return plan, nil
	}
	stored, err := s.games.GetByID(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("load stored game %d: %w", game.ID, err)
	}
	plan.staleSlugs = append(plan.staleSlugs, gameInstallerSlugs(stored)...)

	if !game.IsPublic || stored.IsPublic {
		return plan, nil
	}
	submission, err := s.submissions.GetPendingByGameID(ctx, game.ID)
	switch {
	case err == nil:
		plan.submission = submission
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load submission for game %d: %w", game.ID, err)
	}
	return plan, nil
}

// finishSave runs the effects of a written game. Cached installer lists
// built from the game are dropped, then the planned submission is accepted.
func (s *GameService) finishSave(ctx context.Context, game *domain.Game, plan *savePlan) error {
	invalidateInstallerCache(ctx, s.cache, s.logger, plan.staleSlugs...)
	if plan.submission == nil {
		return nil
	}
	return s.acceptSubmission(ctx, plan.submission, game)
}

// gameInstallerSlugs lists the cache keys whose documents are built from
// game: its own slug and the auto installer slug of every platform.
func gameInstallerSlugs(game *domain.Game) []string {
	slugs := []string{game.Slug}
	for _, p := range game.Platforms {
		slugs = append(slugs, domain.AutoInstallerSlug(game.Slug, p.Slug))
	}
	return slugs
}

func (s *GameService) acceptSubmission(ctx context.Context, submission *domain.GameSubmission, game *domain.Game) error {
	if err := submission.Accept(s.now()); err != nil {
		return err
	}
	if err := s.submissions.Update(ctx, submission); err != nil {
		return fmt.Errorf("accept submission %d: %w", submission.ID, err)
	}

	s.logger.Info("game submission accepted",
		zap.Uint("submission", submission.ID),
		zap.String("game", game.Slug))

	if submission.User == nil {
		s.logger.Warn("submission has no user to notify", zap.Uint("submission", submission.ID))
		return nil
	}
	subject, body := submissionAcceptedEmail(s.cfg, submission.User, game)
	if err := s.notifier.Send(ctx, submission.User.Email, subject, body); err != nil {
		// The acceptance stands even when the mail cannot be delivered.
		s.logger.Error("failed to send submission email",
			zap.Uint("submission", submission.ID),
			zap.String("recipient", submission.User.Email),
			zap.Error(err))
	}
	return nil
}

func submissionAcceptedEmail(cfg *config.Config, user *domain.User, game *domain.Game) (subject, body string) {
	subject = strings.TrimSpace(fmt.Sprintf("%s Your game submission for '%s' has been accepted!", cfg.EmailSubjectPrefix, game.Name))
	body = fmt.Sprintf(`Hello %s!

Your submission for %s has been reviewed by a moderator and approved!

The game's page is available at %s/games/%s
You can submit an installer script for it if you haven't done so already. The
scripting details are explained on the installer submission page, and the
scripts of other games show how they are written.

Have a great day!
`, user.Username, game.Name, strings.TrimRight(cfg.SiteURL, "/"), game.Slug)
	return subject, body
}

// Save writes the game between prepareSave and finishSave. A failed
// write leaves the pending submission untouched.
func (s *GameService) Save(ctx context.Context, game *domain.Game) error {
	plan, err := s.prepareSave(ctx, game)
	if err != nil {
		return err
	}

	if game.ID == 0 {
		err = s.games.Create(ctx, game)
	} else {
		err = s.games.Update(ctx, game)
	}
	if err != nil {
		return fmt.Errorf("save game %q: %w", game.Slug, err)
	}

	return s.finishSave(ctx, game, plan)
}

// Publish makes the game public. Publishing an already public game is a
// no-op write.
func (s *GameService) Publish(ctx context.Context, gameSlug string) (*domain.Game, error) {
	game, err := s.Get(ctx, gameSlug)
	if err != nil {
		return nil, err
	}
	game.IsPublic = true
	if err := s.Save(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

type SubmitGameInput struct {
	Name          string
	Year          *int
	Website       string
	Description   string
	PlatformSlugs []string
	GenreSlugs    []string
	PublisherSlug string
	DeveloperSlug string
	SteamID       *uint
}

// Submit creates a private game on behalf of a user and records the
// submission for review.
func (s *GameService) Submit(ctx context.Context, actor Actor, input SubmitGameInput) (*domain.GameSubmission, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrEmptyGameName
	}

	game := &domain.Game{
		Name:        name,
		Year:        input.Year,
		Website:     input.Website,
		Description: input.Description,
		SteamID:     input.SteamID,
	}

	for _, ps := range input.PlatformSlugs {
		p, err := s.platforms.GetBySlug(ctx, ps)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrPlatformNotFound, ps)
			}
			return nil, err
		}
		game.Platforms = append(game.Platforms, p)
	}
	for _, gs := range input.GenreSlugs {
		g, err := s.genres.GetBySlug(ctx, gs)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrGenreNotFound, gs)
			}
			return nil, err
		}
		game.Genres = append(game.Genres, g)
	}
	var err error
	if game.PublisherID, err = s.companyID(ctx, input.PublisherSlug); err != nil {
		return nil, err
	}
	if game.DeveloperID, err = s.companyID(ctx, input.DeveloperSlug); err != nil {
		return nil, err
	}

	if err := s.Save(ctx, game); err != nil {
		return nil, err
	}

	submission := &domain.GameSubmission{UserID: actor.UserID, GameID: game.ID}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("record submission: %w", err)
	}
	submission.Game = game

	s.logger.Info("game submitted",
		zap.String("game", game.Slug),
		zap.String("user", actor.UserID.String()))
	return submission, nil
}

func (s *GameService) companyID(ctx context.Context, companySlug string) (*uint, error) {
	if companySlug == "" {
		return nil, nil
	}
	company, err := s.companies.GetBySlug(ctx, companySlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCompanyNotFound, companySlug)
		}
		return nil, err
	}
	return &company.ID, nil
}

func (s *GameService) Screenshots(ctx context.Context, gameSlug string) ([]*domain.Screenshot, error) {
	game, err := s.Get(ctx, gameSlug)
	if err != nil {
		return nil, err
	}
	return s.screenshots.ListPublishedByGameID(ctx, game.ID)
}
