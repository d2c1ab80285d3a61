package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/repository/postgres"
	"github.com/dom/game-catalog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestInstallerRepository_ListByGameSlug(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewInstallerRepository(testDB.DB)
	ctx := context.Background()

	wine := testutil.BuildRunner(t, testDB.DB, "Wine", "wine")
	game := testutil.NewGameBuilder("Quake", "quake").Build(t, testDB.DB)
	other := testutil.NewGameBuilder("Doom", "doom").Build(t, testDB.DB)
	testutil.NewInstallerBuilder(game, "quake-setup").WithRunner(wine).Build(t, testDB.DB)
	testutil.NewInstallerBuilder(game, "quake-beta").Unpublished().Build(t, testDB.DB)
	testutil.NewInstallerBuilder(game, "quake-gog").Build(t, testDB.DB)
	testutil.NewInstallerBuilder(other, "doom-setup").Build(t, testDB.DB)

	tests := []struct {
		name          string
		gameSlug      string
		publishedOnly bool
		wantSlugs     []string
	}{
		{name: "published in id order", gameSlug: "quake", publishedOnly: true, wantSlugs: []string{"quake-setup", "quake-gog"}},
		{name: "all", gameSlug: "quake", wantSlugs: []string{"quake-setup", "quake-beta", "quake-gog"}},
		{name: "unknown game", gameSlug: "half-life", publishedOnly: true, wantSlugs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			installers, err := repo.ListByGameSlug(ctx, tt.gameSlug, tt.publishedOnly)
			require.NoError(t, err)
			slugs := []string{}
			for _, i := range installers {
				slugs = append(slugs, i.Slug)
				require.NotNil(t, i.Game)
				assert.Equal(t, tt.gameSlug, i.Game.Slug)
			}
			assert.Equal(t, tt.wantSlugs, slugs)
		})
	}

	count, err := repo.CountByGameID(ctx, game.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	count, err = repo.CountByGameID(ctx, game.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestInstallerRepository_ListByRunnerID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewInstallerRepository(testDB.DB)
	ctx := context.Background()

	wine := testutil.BuildRunner(t, testDB.DB, "Wine", "wine")
	dosbox := testutil.BuildRunner(t, testDB.DB, "DOSBox", "dosbox")
	quake := testutil.NewGameBuilder("Quake", "quake").Build(t, testDB.DB)
	doom := testutil.NewGameBuilder("Doom", "doom").Build(t, testDB.DB)
	testutil.NewInstallerBuilder(quake, "quake-setup").WithRunner(wine).Build(t, testDB.DB)
	testutil.NewInstallerBuilder(quake, "quake-dos").WithRunner(dosbox).Build(t, testDB.DB)
	testutil.NewInstallerBuilder(doom, "doom-setup").WithRunner(wine).Unpublished().Build(t, testDB.DB)

	installers, err := repo.ListByRunnerID(ctx, wine.ID)
	require.NoError(t, err)
	require.Len(t, installers, 2)
	assert.Equal(t, "quake-setup", installers[0].Slug)
	assert.Equal(t, "doom-setup", installers[1].Slug)
	require.NotNil(t, installers[1].Game)
	assert.Equal(t, "doom", installers[1].Game.Slug)
}

func TestInstallerRepository_GetBySlug(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewInstallerRepository(testDB.DB)
	ctx := context.Background()

	linux := testutil.NewPlatformBuilder("Linux", "linux").Build(t, testDB.DB)
	wine := testutil.BuildRunner(t, testDB.DB, "Wine", "wine")
	game := testutil.NewGameBuilder("Quake", "quake").WithPlatforms(linux).Build(t, testDB.DB)
	testutil.NewInstallerBuilder(game, "quake-setup").WithRunner(wine).Build(t, testDB.DB)

	got, err := repo.GetBySlug(ctx, "quake-setup")
	require.NoError(t, err)
	require.NotNil(t, got.Game)
	assert.Equal(t, "quake", got.Game.Slug)
	require.Len(t, got.Game.Platforms, 1)
	assert.Equal(t, "wine", got.RunnerSlug())

	_, err = repo.GetBySlug(ctx, "quake")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInstallerRepository_CreateDuplicateSlug(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewInstallerRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	game := testutil.NewGameBuilder("Quake", "quake").Build(t, testDB.DB)
	testutil.NewInstallerBuilder(game, "quake-setup").WithUser(user).Build(t, testDB.DB)

	err := repo.Create(ctx, &domain.Installer{
		GameID:  game.ID,
		UserID:  user.ID,
		Slug:    "quake-setup",
		Version: "Setup",
		Content: "{}",
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestInstallerIssueRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewInstallerIssueRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	game := testutil.NewGameBuilder("Quake", "quake").Build(t, testDB.DB)
	installer := testutil.NewInstallerBuilder(game, "quake-setup").Build(t, testDB.DB)

	now := time.Now()
	for i, desc := range []string{"No sound", "Crashes on start"} {
		require.NoError(t, repo.Create(ctx, &domain.InstallerIssue{
			InstallerID:   installer.ID,
			SubmittedByID: user.ID,
			Description:   desc,
			SubmittedOn:   now.Add(time.Duration(i) * time.Minute),
		}))
	}

	issues, err := repo.ListByInstallerID(ctx, installer.ID)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "No sound", issues[0].Description)
	assert.Equal(t, "Crashes on start", issues[1].Description)
}
