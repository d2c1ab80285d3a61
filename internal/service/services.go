package service

import (
	"github.com/dom/game-catalog/internal/cache"
	"github.com/dom/game-catalog/internal/config"
	"github.com/dom/game-catalog/internal/notify"
	"github.com/dom/game-catalog/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	Auth      *AuthService
	Game      *GameService
	Installer *InstallerService
	Catalog   *CatalogService
	Library   *LibraryService
	Featured  *FeaturedService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, installerCache cache.InstallerCache, notifier notify.Sender, logger *zap.Logger) *Services {
	return &Services{
		Auth:      NewAuthService(repos.User, repos.Session, cfg),
		Game:      NewGameService(repos, notifier, installerCache, cfg, logger.Named("games")),
		Installer: NewInstallerService(repos, installerCache, logger.Named("installers")),
		Catalog:   NewCatalogService(repos, installerCache, logger.Named("catalog")),
		Library:   NewLibraryService(repos.Library, repos.Game),
		Featured:  NewFeaturedService(repos, logger.Named("featured")),
	}
}
