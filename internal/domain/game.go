package domain

import (
	"time"

	"github.com/dom/game-catalog/internal/document"
)

// Length limits for the synthesized "<game>-<platform>" installer slug.
const (
	autoSlugGamePart     = 30
	autoSlugPlatformPart = 20
)

type GameFlag uint16

const (
	FlagFullyLibre GameFlag = 1 << iota
	FlagOpenEngine
	FlagFree
	FlagFreeToPlay
	FlagPWYW
	FlagDemo
)

var gameFlagNames = []struct {
	flag GameFlag
	name string
}{
	{FlagFullyLibre, "fully_libre"},
	{FlagOpenEngine, "open_engine"},
	{FlagFree, "free"},
	{FlagFreeToPlay, "freetoplay"},
	{FlagPWYW, "pwyw"},
	{FlagDemo, "demo"},
}

func (f GameFlag) Has(flag GameFlag) bool {
	return f&flag == flag
}

// Names lists the set flags in declaration order.
func (f GameFlag) Names() []string {
	names := []string{}
	for _, fn := range gameFlagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

// ParseGameFlags is the inverse of Names. Unknown names are ignored.
func ParseGameFlags(names []string) GameFlag {
	var f GameFlag
	for _, n := range names {
		for _, fn := range gameFlagNames {
			if fn.name == n {
				f |= fn.flag
			}
		}
	}
	return f
}

type Game struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	Name          string      `json:"name" gorm:"size:200;not null"`
	Slug          string      `json:"slug" gorm:"size:50;uniqueIndex;not null"`
	Year          *int        `json:"year"`
	Platforms     []*Platform `json:"platforms,omitempty" gorm:"many2many:game_platforms"`
	Genres        []*Genre    `json:"genres,omitempty" gorm:"many2many:game_genres"`
	PublisherID   *uint       `json:"publisherId"`
	DeveloperID   *uint       `json:"developerId"`
	Website       string      `json:"website" gorm:"size:200"`
	Icon          string      `json:"icon"`
	TitleLogo     string      `json:"titleLogo"`
	Description   string      `json:"description" gorm:"type:text"`
	IsPublic      bool        `json:"isPublic" gorm:"not null;default:false"`
	Flags         GameFlag    `json:"flags" gorm:"not null;default:0"`
	SteamID       *uint       `json:"steamid"`
	GOGID         string      `json:"gogid" gorm:"size:200"`
	HumbleStoreID string      `json:"humblestoreid" gorm:"size:200"`
	CreatedAt     time.Time   `json:"created"`
	UpdatedAt     time.Time   `json:"updated"`

	// Relations
	Publisher *Company        `json:"publisher,omitempty" gorm:"foreignKey:PublisherID"`
	Developer *Company        `json:"developer,omitempty" gorm:"foreignKey:DeveloperID"`
	Metadata  []*GameMetadata `json:"metadata,omitempty" gorm:"foreignKey:GameID"`
}

// GameMetadata is a free-form key/value attached to a game.
type GameMetadata struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	GameID uint   `json:"gameId" gorm:"not null;index"`
	Key    string `json:"key" gorm:"size:16;not null"`
	Value  string `json:"value" gorm:"size:255;not null"`
}

// TableName keeps the singular name used by the rest of the schema.
func (GameMetadata) TableName() string {
	return "game_metadata"
}

// DefaultInstallers synthesizes one installer document per platform that
// carries a default installer template, in platform order. Platforms must be
// loaded. Nothing is persisted.
func (g *Game) DefaultInstallers() []*document.Map {
	installers := []*document.Map{}
	for _, p := range g.Platforms {
		if p == nil {
			continue
		}
		installer, ok := p.DefaultInstallerTemplate()
		if !ok {
			continue
		}
		installer.Set("name", document.String(g.Name))
		installer.Set("game_slug", document.String(g.Slug))
		installer.Set("version", document.String(p.Name))
		installer.Set("slug", document.String(AutoInstallerSlug(g.Slug, p.Slug)))
		installer.Set("platform", document.String(p.Slug))
		installer.Set("description", document.String(""))
		installer.Set("published", document.Bool(true))
		installer.Set("auto", document.Bool(true))
		installers = append(installers, installer)
	}
	return installers
}

// AutoInstallerSlug is the slug of a synthesized installer. Clients address
// default installers by this exact form.
func AutoInstallerSlug(gameSlug, platformSlug string) string {
	return prefix(gameSlug, autoSlugGamePart) + "-" + prefix(platformSlug, autoSlugPlatformPart)
}

// SteamSupport reports which platform Steam installs the game for. ok is
// false when the game has no Steam id; platform is empty when it has one but
// neither linux nor windows is listed.
func (g *Game) SteamSupport() (platform string, ok bool) {
	if g.SteamID == nil || *g.SteamID == 0 {
		return "", false
	}
	hasWindows := false
	for _, p := range g.Platforms {
		switch p.Slug {
		case "linux":
			return "linux", true
		case "windows":
			hasWindows = true
		}
	}
	if hasWindows {
		return "windows", true
	}
	return "", true
}

func (g *Game) PlatformSlugs() []string {
	slugs := make([]string, 0, len(g.Platforms))
	for _, p := range g.Platforms {
		slugs = append(slugs, p.Slug)
	}
	return slugs
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
