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
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Attempts at inserting an installer when a concurrent writer takes the slug
// between generation and insert.
const installerSaveAttempts = 3

// Actor is the authenticated user performing a change.
type Actor struct {
	UserID  uuid.UUID
	IsStaff bool
}

// ResolvedInstaller is one result of a lookup: a stored installer or a
// default installer synthesized from a platform template.
type ResolvedInstaller struct {
	Installer *domain.Installer
	Auto      *document.Map
}

func (r ResolvedInstaller) IsAuto() bool {
	return r.Auto != nil
}

// Document renders stored installers with their metadata. Synthesized ones
// are returned as a copy.
func (r ResolvedInstaller) Document() *document.Map {
	if r.Auto != nil {
		return r.Auto.Clone()
	}
	return r.Installer.Document(true)
}

type InstallerService struct {
	installers repository.InstallerRepository
	issues     repository.InstallerIssueRepository
	games      repository.GameRepository
	platforms  repository.PlatformRepository
	runners    repository.RunnerRepository
	cache      cache.InstallerCache
	logger     *zap.Logger
}

func NewInstallerService(repos *repository.Repositories, installerCache cache.InstallerCache, logger *zap.Logger) *InstallerService {
	return &InstallerService{
		installers: repos.Installer,
		issues:     repos.InstallerIssue,
		games:      repos.Game,
		platforms:  repos.Platform,
		runners:    repos.Runner,
		cache:      installerCache,
		logger:     logger,
	}
}

// Resolve looks slug up as an installer slug, then as the slug of a game with
// published installers, then as the slug of a default installer
// ("<game>-<platform>"). The first tier with a result wins.
func (s *InstallerService) Resolve(ctx context.Context, slug string) ([]ResolvedInstaller, error) {
	installer, err := s.installers.GetBySlug(ctx, slug)
	if err == nil {
		return []ResolvedInstaller{{Installer: installer}}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get installer %q: %w", slug, err)
	}

	published, err := s.installers.ListByGameSlug(ctx, slug, true)
	if err != nil {
		return nil, fmt.Errorf("list installers of game %q: %w", slug, err)
	}
	if len(published) > 0 {
		resolved := make([]ResolvedInstaller, 0, len(published))
		for _, i := range published {
			resolved = append(resolved, ResolvedInstaller{Installer: i})
		}
		return resolved, nil
	}

	auto, err := s.resolveAuto(ctx, slug)
	if err != nil {
		return nil, err
	}
	if auto != nil {
		return []ResolvedInstaller{{Auto: auto}}, nil
	}

	return nil, domain.ErrInstallerNotFound
}

func (s *InstallerService) resolveAuto(ctx context.Context, installerSlug string) (*document.Map, error) {
	platforms, err := s.platforms.ListWithDefaultInstaller(ctx)
	if err != nil {
		return nil, fmt.Errorf("list platforms with default installer: %w", err)
	}

	for _, p := range platforms {
		suffix := "-" + p.Slug
		if !strings.HasSuffix(installerSlug, suffix) {
			continue
		}
		games, err := s.games.ListBySlugPrefix(ctx, strings.TrimSuffix(installerSlug, suffix))
		if err != nil {
			return nil, fmt.Errorf("list games for %q: %w", installerSlug, err)
		}
		for _, game := range games {
			for _, auto := range game.DefaultInstallers() {
				if auto.GetString("slug") == installerSlug {
					return auto, nil
				}
			}
		}
	}
	return nil, nil
}

// ResolveDocuments is Resolve rendered as documents, followed by the default
// installers of the game whose slug is slug, if there is one.
func (s *InstallerService) ResolveDocuments(ctx context.Context, slug string) ([]*document.Map, error) {
	resolved, err := s.Resolve(ctx, slug)
	if err != nil && !errors.Is(err, domain.ErrInstallerNotFound) {
		return nil, err
	}

	docs := make([]*document.Map, 0, len(resolved))
	for _, r := range resolved {
		docs = append(docs, r.Document())
	}

	game, err := s.games.GetBySlug(ctx, slug)
	switch {
	case err == nil:
		docs = append(docs, game.DefaultInstallers()...)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("get game %q: %w", slug, err)
	}

	if len(docs) == 0 {
		return nil, domain.ErrInstallerNotFound
	}
	return docs, nil
}

// DocumentsJSON is the indented JSON array of ResolveDocuments. Results are
// served from the cache when possible.
func (s *InstallerService) DocumentsJSON(ctx context.Context, slug string) ([]byte, error) {
	if data, ok, err := s.cache.Get(ctx, slug); err != nil {
		s.logger.Warn("installer cache read failed", zap.String("slug", slug), zap.Error(err))
	} else if ok {
		return data, nil
	}

	docs, err := s.ResolveDocuments(ctx, slug)
	if err != nil {
		return nil, err
	}

	items := make([]document.Value, 0, len(docs))
	for _, d := range docs {
		items = append(items, document.Object(d))
	}
	data, err := document.EncodeJSON(document.List(items...), "  ")
	if err != nil {
		return nil, fmt.Errorf("encode installers %q: %w", slug, err)
	}

	if err := s.cache.Set(ctx, slug, data); err != nil {
		s.logger.Warn("installer cache write failed", zap.String("slug", slug), zap.Error(err))
	}
	return data, nil
}

// Get returns the stored installer with the exact slug.
func (s *InstallerService) Get(ctx context.Context, slug string) (*domain.Installer, error) {
	installer, err := s.installers.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInstallerNotFound
		}
		return nil, err
	}
	return installer, nil
}

type CreateInstallerInput struct {
	GameSlug    string
	RunnerSlug  string
	Version     string
	Description *string
	Notes       string
	Content     string
	Rating      domain.Rating
}

// Create stores a new unpublished installer. An installer submitted without a
// script gets the default one for its game.
func (s *InstallerService) Create(ctx context.Context, actor Actor, input CreateInstallerInput) (*domain.Installer, error) {
	game, err := s.games.GetBySlug(ctx, input.GameSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGameNotFound
		}
		return nil, err
	}

	installer := &domain.Installer{
		GameID:      game.ID,
		UserID:      actor.UserID,
		Version:     strings.TrimSpace(input.Version),
		Description: input.Description,
		Notes:       input.Notes,
		Content:     input.Content,
		Rating:      input.Rating,
		Game:        game,
	}

	if err := s.setRunner(ctx, installer, input.RunnerSlug); err != nil {
		return nil, err
	}

	if strings.TrimSpace(installer.Content) == "" {
		content, version, err := domain.DefaultInstallerContent(game)
		if err != nil {
			return nil, err
		}
		installer.Content = content
		if version != "" {
			installer.Version = version
		}
	}

	if err := validateInstaller(installer); err != nil {
		return nil, err
	}
	if err := s.save(ctx, installer, true); err != nil {
		return nil, err
	}

	s.invalidate(ctx, installer.Slug, game.Slug)
	s.logger.Info("installer created",
		zap.String("slug", installer.Slug),
		zap.String("game", game.Slug),
		zap.String("user", actor.UserID.String()))
	return installer, nil
}

// UpdateInstallerInput holds the fields to change; nil fields are kept.
type UpdateInstallerInput struct {
	RunnerSlug  *string
	Version     *string
	Description *string
	Notes       *string
	Content     *string
	Rating      *domain.Rating
}

// Update changes an installer on behalf of its author or a staff member. The
// slug is regenerated from the game name and the version.
func (s *InstallerService) Update(ctx context.Context, actor Actor, installerSlug string, input UpdateInstallerInput) (*domain.Installer, error) {
	installer, err := s.Get(ctx, installerSlug)
	if err != nil {
		return nil, err
	}
	if installer.UserID != actor.UserID && !actor.IsStaff {
		return nil, domain.ErrNotInstallerOwner
	}

	if input.RunnerSlug != nil {
		if err := s.setRunner(ctx, installer, *input.RunnerSlug); err != nil {
			return nil, err
		}
	}
	if input.Version != nil {
		installer.Version = strings.TrimSpace(*input.Version)
	}
	if input.Description != nil {
		installer.Description = input.Description
	}
	if input.Notes != nil {
		installer.Notes = *input.Notes
	}
	if input.Content != nil {
		installer.Content = *input.Content
	}
	if input.Rating != nil {
		installer.Rating = *input.Rating
	}

	if err := validateInstaller(installer); err != nil {
		return nil, err
	}
	if err := s.save(ctx, installer, false); err != nil {
		return nil, err
	}

	s.invalidate(ctx, installerSlug, installer.Slug, installer.Game.Slug)
	return installer, nil
}

// Publish makes an installer visible in game lookups.
func (s *InstallerService) Publish(ctx context.Context, installerSlug string) (*domain.Installer, error) {
	installer, err := s.Get(ctx, installerSlug)
	if err != nil {
		return nil, err
	}
	installer.Published = true
	if err := s.save(ctx, installer, false); err != nil {
		return nil, err
	}

	s.invalidate(ctx, installerSlug, installer.Slug, installer.Game.Slug)
	s.logger.Info("installer published", zap.String("slug", installer.Slug))
	return installer, nil
}

func (s *InstallerService) ReportIssue(ctx context.Context, actor Actor, installerSlug, description string) (*domain.InstallerIssue, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.ErrEmptyIssueDescription
	}
	installer, err := s.Get(ctx, installerSlug)
	if err != nil {
		return nil, err
	}

	issue := &domain.InstallerIssue{
		InstallerID:   installer.ID,
		SubmittedByID: actor.UserID,
		Description:   description,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *InstallerService) Issues(ctx context.Context, installerSlug string) ([]*domain.InstallerIssue, error) {
	installer, err := s.Get(ctx, installerSlug)
	if err != nil {
		return nil, err
	}
	return s.issues.ListByInstallerID(ctx, installer.ID)
}

func (s *InstallerService) setRunner(ctx context.Context, installer *domain.Installer, runnerSlug string) error {
	if runnerSlug == "" {
		installer.RunnerID = nil
		installer.Runner = nil
		return nil
	}
	runner, err := s.runners.GetBySlug(ctx, runnerSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRunnerNotFound
		}
		return err
	}
	installer.RunnerID = &runner.ID
	installer.Runner = runner
	return nil
}

// prepareForSave assigns the installer slug. The row being saved does not
// count as a collision so an unchanged installer keeps its slug.
func (s *InstallerService) prepareForSave(ctx context.Context, installer *domain.Installer) error {
	if installer.Game == nil {
		return fmt.Errorf("installer %d: game not loaded", installer.ID)
	}
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return s.installers.SlugExists(ctx, candidate, installer.ID)
	}
	generated, err := slug.Unique(ctx, installer.SlugBase(installer.Game.Name), domain.InstallerSlugMaxLen, exists)
	if err != nil {
		return fmt.Errorf("generate installer slug: %w", err)
	}
	installer.Slug = generated
	return nil
}

func (s *InstallerService) save(ctx context.Context, installer *domain.Installer, create bool) error {
	var err error
	for attempt := 0; attempt < installerSaveAttempts; attempt++ {
		if err = s.prepareForSave(ctx, installer); err != nil {
			return err
		}
		if create {
			err = s.installers.Create(ctx, installer)
		} else {
			err = s.installers.Update(ctx, installer)
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		s.logger.Debug("installer slug taken concurrently, retrying",
			zap.String("slug", installer.Slug),
			zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return fmt.Errorf("save installer: %w", err)
	}
	return nil
}

func (s *InstallerService) invalidate(ctx context.Context, slugs ...string) {
	invalidateInstallerCache(ctx, s.cache, s.logger, slugs...)
}

// invalidateInstallerCache drops cached installer lists, logging failures.
func invalidateInstallerCache(ctx context.Context, c cache.InstallerCache, logger *zap.Logger, slugs ...string) {
	if len(slugs) == 0 {
		return
	}
	if err := c.Invalidate(ctx, slugs...); err != nil {
		logger.Warn("installer cache invalidation failed", zap.Strings("slugs", slugs), zap.Error(err))
	}
}

func validateInstaller(installer *domain.Installer) error {
	if installer.Version == "" {
		return domain.ErrEmptyVersion
	}
	if len(installer.Version) > domain.InstallerVersionMaxLen {
		return domain.ErrVersionTooLong
	}
	if installer.Description != nil && len(*installer.Description) > domain.InstallerDescriptionMax {
		return fmt.Errorf("%w: description longer than %d characters", domain.ErrInvalidInstallerContent, domain.InstallerDescriptionMax)
	}
	if !installer.Rating.IsValid() {
		return domain.ErrInvalidRating
	}
	return ValidateInstallerContent(installer.Content)
}
