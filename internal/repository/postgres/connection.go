package postgres

import (
	"fmt"
	"time"

	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectRetries  int
	RetryInterval   time.Duration
	LogLevel        logger.LogLevel
	Logger          *zap.Logger
}

func NewConnection(databaseURL string, opts Options) (*gorm.DB, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	var db *gorm.DB
	var err error
	for attempt := 0; attempt <= opts.ConnectRetries; attempt++ {
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger:         logger.Default.LogMode(opts.LogLevel),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		opts.Logger.Warn("database connection failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if attempt < opts.ConnectRetries {
			time.Sleep(opts.RetryInterval)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.Company{},
		&domain.Genre{},
		&domain.Platform{},
		&domain.Runner{},
		&domain.Game{},
		&domain.GameMetadata{},
		&domain.Screenshot{},
		&domain.Installer{},
		&domain.InstallerIssue{},
		&domain.GameLibrary{},
		&domain.GameSubmission{},
		&domain.Featured{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:           NewUserRepository(db),
		Session:        NewSessionRepository(db),
		Game:           NewGameRepository(db),
		Company:        NewCompanyRepository(db),
		Genre:          NewGenreRepository(db),
		Platform:       NewPlatformRepository(db),
		Runner:         NewRunnerRepository(db),
		Installer:      NewInstallerRepository(db),
		InstallerIssue: NewInstallerIssueRepository(db),
		Submission:     NewSubmissionRepository(db),
		Library:        NewLibraryRepository(db),
		Screenshot:     NewScreenshotRepository(db),
		Featured:       NewFeaturedRepository(db),
	}
}

// slugExists counts rows of model with the given slug, ignoring the row with
// id excludeID. An excludeID of zero excludes nothing.
func slugExists(db *gorm.DB, model interface{}, slug string, excludeID uint) (bool, error) {
	var count int64
	q := db.Model(model).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// escapeLike escapes LIKE wildcards so s matches literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func orderPlatforms(db *gorm.DB) *gorm.DB {
	return db.Order("platforms.id ASC")
}
