package postgres

import (
	"context"

	"github.com/dom/game-catalog/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type installerRepository struct {
	db *gorm.DB
}

func NewInstallerRepository(db *gorm.DB) *installerRepository {
	return &installerRepository{db: db}
}

func (r *installerRepository) Create(ctx context.Context, installer *domain.Installer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(installer).Error
}

func (r *installerRepository) Update(ctx context.Context, installer *domain.Installer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(installer).Error
}

func (r *installerRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Game").
		Preload("Game.Platforms", orderPlatforms).
		Preload("Runner")
}

func (r *installerRepository) GetBySlug(ctx context.Context, slug string) (*domain.Installer, error) {
	var installer domain.Installer
	err := r.withRelations(ctx).First(&installer, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &installer, nil
}

func (r *installerRepository) ListByGameSlug(ctx context.Context, gameSlug string, publishedOnly bool) ([]*domain.Installer, error) {
	var installers []*domain.Installer
	q := r.withRelations(ctx).
		Where("game_id IN (?)", r.db.WithContext(ctx).Model(&domain.Game{}).Select("id").Where("slug = ?", gameSlug))
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	err := q.Order("id ASC").Find(&installers).Error
	if err != nil {
		return nil, err
	}
	return installers, nil
}

func (r *installerRepository) CountByGameID(ctx context.Context, gameID uint, publishedOnly bool) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&domain.Installer{}).Where("game_id = ?", gameID)
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *installerRepository) ListByRunnerID(ctx context.Context, runnerID uint) ([]*domain.Installer, error) {
	var installers []*domain.Installer
	err := r.db.WithContext(ctx).
		Preload("Game").
		Where("runner_id = ?", runnerID).
		Order("id ASC").
		Find(&installers).Error
	if err != nil {
		return nil, err
	}
	return installers, nil
}

func (r *installerRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	return slugExists(r.db.WithContext(ctx), &domain.Installer{}, slug, excludeID)
}

type installerIssueRepository struct {
	db *gorm.DB
}

func NewInstallerIssueRepository(db *gorm.DB) *installerIssueRepository {
	return &installerIssueRepository{db: db}
}

func (r *installerIssueRepository) Create(ctx context.Context, issue *domain.InstallerIssue) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(issue).Error
}

func (r *installerIssueRepository) ListByInstallerID(ctx context.Context, installerID uint) ([]*domain.InstallerIssue, error) {
	var issues []*domain.InstallerIssue
	err := r.db.WithContext(ctx).
		Where("installer_id = ?", installerID).
		Order("submitted_on ASC").
		Order("id ASC").
		Find(&issues).Error
	if err != nil {
		return nil, err
	}
	return issues, nil
}
