package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/game-catalog/internal/repository/postgres"
	"github.com/dom/game-catalog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformRepository_ListWithDefaultInstaller(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewPlatformRepository(testDB.DB)
	ctx := context.Background()

	testutil.NewPlatformBuilder("Flash", "flash").WithDefaultInstaller(`{"runner": "flash"}`).Build(t, testDB.DB)
	testutil.NewPlatformBuilder("Linux", "linux").Build(t, testDB.DB)
	testutil.NewPlatformBuilder("Amiga", "amiga").WithDefaultInstaller(`null`).Build(t, testDB.DB)
	testutil.NewPlatformBuilder("C64", "c64").WithDefaultInstaller(`{}`).Build(t, testDB.DB)
	testutil.NewPlatformBuilder("Browser", "browser").WithDefaultInstaller(`["web"]`).Build(t, testDB.DB)
	testutil.NewPlatformBuilder("DOS", "dos").WithDefaultInstaller(`{"runner": "dosbox"}`).Build(t, testDB.DB)

	platforms, err := repo.ListWithDefaultInstaller(ctx)
	require.NoError(t, err)

	slugs := []string{}
	for _, p := range platforms {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"flash", "dos"}, slugs)
}

func TestPlatformRepository_ClearDefaultInstaller(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewPlatformRepository(testDB.DB)
	ctx := context.Background()

	platform := testutil.NewPlatformBuilder("Flash", "flash").WithDefaultInstaller(`{"runner": "flash"}`).Build(t, testDB.DB)

	require.NoError(t, platform.SetDefaultInstaller(nil))
	require.NoError(t, repo.Update(ctx, platform))

	got, err := repo.GetBySlug(ctx, "flash")
	require.NoError(t, err)
	assert.False(t, got.HasDefaultInstaller())

	platforms, err := repo.ListWithDefaultInstaller(ctx)
	require.NoError(t, err)
	assert.Empty(t, platforms)
}
