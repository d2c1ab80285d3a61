// Seed a development database with a small catalog.
//
//	go run ./scripts/seed-catalog.go
package main

import (
	"context"
	"log"
	"os"

	"github.com/dom/game-catalog/internal/cache"
	"github.com/dom/game-catalog/internal/config"
	"github.com/dom/game-catalog/internal/document"
	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/logging"
	"github.com/dom/game-catalog/internal/notify"
	"github.com/dom/game-catalog/internal/repository/postgres"
	"github.com/dom/game-catalog/internal/service"
	"go.uber.org/zap"
)

const flashTemplate = `
runner: flash
script:
  files:
  - swf: N/A:Select the game's SWF file
  game:
    main_file: swf
`

var seedGames = []struct {
	name      string
	year      int
	steamID   uint
	platforms []string
	genres    []string
	installer string
}{
	{name: "Quake", year: 1996, steamID: 2310, platforms: []string{"linux", "windows"}, genres: []string{"action"}},
	{name: "Doom", year: 1993, platforms: []string{"linux"}, genres: []string{"action"}, installer: `
files:
- wad: N/A:Select DOOM.WAD
game:
  main_file: wad
`},
	{name: "Alien Hominid", year: 2002, platforms: []string{"flash"}, genres: []string{"arcade"}},
	{name: "Sid Meier's Civilization", year: 1991, platforms: []string{"windows"}, genres: []string{"strategy"}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(logging.Options{Level: "info", Development: true})
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.DatabaseURL, postgres.Options{Logger: logger.Named("db")})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	repos := postgres.NewRepositories(db)
	services := service.NewServices(repos, cfg, cache.NopInstallerCache{}, notify.NewLogSender(logger), logger)
	ctx := context.Background()

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "password123"
	}
	result, err := services.Auth.Register(ctx, service.RegisterInput{Username: "admin", Email: "admin@localhost", Password: password})
	if err != nil {
		logger.Fatal("failed to create staff user", zap.Error(err))
	}
	admin := result.User
	admin.IsStaff = true
	if err := repos.User.Update(ctx, admin); err != nil {
		logger.Fatal("failed to promote staff user", zap.Error(err))
	}
	actor := service.Actor{UserID: admin.ID, IsStaff: true}

	for _, p := range []struct{ name, slug string }{{"Linux", "linux"}, {"Windows", "windows"}, {"Flash", "flash"}} {
		if err := repos.Platform.Create(ctx, &domain.Platform{Name: p.name, Slug: p.slug}); err != nil {
			logger.Fatal("failed to create platform", zap.String("platform", p.slug), zap.Error(err))
		}
	}
	template, ok := document.ParseMap([]byte(flashTemplate))
	if !ok {
		logger.Fatal("flash template is not a mapping")
	}
	if _, err := services.Catalog.SetDefaultInstaller(ctx, "flash", template); err != nil {
		logger.Fatal("failed to set default installer", zap.Error(err))
	}

	for _, name := range []string{"Wine", "Linux", "Flash", "Steam"} {
		if err := services.Catalog.CreateRunner(ctx, &domain.Runner{Name: name}); err != nil {
			logger.Fatal("failed to create runner", zap.String("runner", name), zap.Error(err))
		}
	}
	for _, name := range []string{"Action", "Arcade", "Strategy"} {
		if err := services.Catalog.CreateGenre(ctx, &domain.Genre{Name: name}); err != nil {
			logger.Fatal("failed to create genre", zap.String("genre", name), zap.Error(err))
		}
	}

	for _, g := range seedGames {
		year := g.year
		input := service.SubmitGameInput{Name: g.name, Year: &year, PlatformSlugs: g.platforms, GenreSlugs: g.genres}
		if g.steamID != 0 {
			steamID := g.steamID
			input.SteamID = &steamID
		}
		submission, err := services.Game.Submit(ctx, actor, input)
		if err != nil {
			logger.Fatal("failed to submit game", zap.String("game", g.name), zap.Error(err))
		}
		game := submission.Game
		if _, err := services.Game.Publish(ctx, game.Slug); err != nil {
			logger.Fatal("failed to publish game", zap.String("game", game.Slug), zap.Error(err))
		}

		// Flash games are covered by the platform default.
		if g.platforms[0] == "flash" {
			continue
		}
		runner := "wine"
		if g.steamID != 0 {
			runner = "steam"
		} else if g.platforms[0] == "linux" {
			runner = "linux"
		}
		installer, err := services.Installer.Create(ctx, actor, service.CreateInstallerInput{
			GameSlug:   game.Slug,
			RunnerSlug: runner,
			Version:    "Setup",
			Content:    g.installer,
			Rating:     domain.RatingGold,
		})
		if err != nil {
			logger.Fatal("failed to create installer", zap.String("game", game.Slug), zap.Error(err))
		}
		if _, err := services.Installer.Publish(ctx, installer.Slug); err != nil {
			logger.Fatal("failed to publish installer", zap.String("installer", installer.Slug), zap.Error(err))
		}
	}

	logger.Info("catalog seeded", zap.Int("games", len(seedGames)), zap.String("staff_user", admin.Username))
}
