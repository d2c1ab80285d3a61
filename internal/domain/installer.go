package domain

import (
	"time"

	"github.com/dom/game-catalog/internal/document"
	"github.com/dom/game-catalog/internal/slug"
	"github.com/google/uuid"
)

type Rating string

const (
	RatingNone     Rating = ""
	RatingPlatinum Rating = "platinum"
	RatingGold     Rating = "gold"
	RatingSilver   Rating = "silver"
	RatingBronze   Rating = "bronze"
	RatingGarbage  Rating = "garbage"
)

var ratingDescriptions = map[Rating]string{
	RatingPlatinum: "Platinum: installs and runs flawlessly",
	RatingGold:     "Gold: works flawlessly with some minor tweaking",
	RatingSilver:   `Silver: works excellently for "normal" use but some features may be broken`,
	RatingBronze:   "Bronze: works: but has some issues: even for normal use",
	RatingGarbage:  "Garbage: game is not playable",
}

// Ratings lists the assignable ratings, best first.
func Ratings() []Rating {
	return []Rating{RatingPlatinum, RatingGold, RatingSilver, RatingBronze, RatingGarbage}
}

// IsValid accepts the empty rating as "not rated".
func (r Rating) IsValid() bool {
	if r == RatingNone {
		return true
	}
	_, ok := ratingDescriptions[r]
	return ok
}

func (r Rating) Description() string {
	return ratingDescriptions[r]
}

const (
	InstallerSlugMaxLen     = 50
	InstallerVersionMaxLen  = 32
	InstallerDescriptionMax = 512

	// Widths of the game name and version parts of a generated installer slug.
	installerSlugNamePart    = 29
	installerSlugVersionPart = 20
)

// SteamVersion is the version label of installers generated for Steam games.
const SteamVersion = "Steam"

type Installer struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	GameID      uint      `json:"gameId" gorm:"not null;index"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	RunnerID    *uint     `json:"runnerId" gorm:"index"`
	Slug        string    `json:"slug" gorm:"size:50;uniqueIndex;not null"`
	Version     string    `json:"version" gorm:"size:32;not null"`
	Description *string   `json:"description" gorm:"size:512"`
	Notes       string    `json:"notes" gorm:"type:text"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	Published   bool      `json:"published" gorm:"not null;default:false"`
	Rating      Rating    `json:"rating" gorm:"size:24"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Game   *Game   `json:"game,omitempty" gorm:"foreignKey:GameID"`
	User   *User   `json:"-" gorm:"foreignKey:UserID"`
	Runner *Runner `json:"runner,omitempty" gorm:"foreignKey:RunnerID;constraint:OnDelete:SET NULL"`
}

// SlugBase is the string the installer slug is generated from.
func (i *Installer) SlugBase(gameName string) string {
	return prefix(slug.Make(gameName), installerSlugNamePart) + "-" + prefix(slug.Make(i.Version), installerSlugVersionPart)
}

// RunnerSlug is empty when the installer has no runner or the runner row is
// gone.
func (i *Installer) RunnerSlug() string {
	if i.Runner == nil {
		return ""
	}
	return i.Runner.Slug
}

// Document is the canonical mapping of the installer script. Content that
// does not parse, is empty or is not a mapping yields an empty mapping, and a
// list yields its first element. With metadata, the catalog fields are added
// and replace any same-named keys of the script. Content is never modified.
// Game should be loaded when metadata is requested.
func (i *Installer) Document(withMetadata bool) *document.Map {
	doc := parseInstallerContent(i.Content)
	if !withMetadata {
		return doc
	}

	game := i.Game
	if game == nil {
		game = &Game{}
	}
	doc.Set("game_slug", document.String(game.Slug))
	doc.Set("version", document.String(i.Version))
	if i.Description != nil {
		doc.Set("description", document.String(*i.Description))
	} else {
		doc.Set("description", document.Null())
	}
	doc.Set("notes", document.String(i.Notes))
	doc.Set("name", document.String(game.Name))
	if game.Year != nil {
		doc.Set("year", document.Int(int64(*game.Year)))
	} else {
		doc.Set("year", document.Null())
	}
	if game.SteamID != nil {
		doc.Set("steamid", document.Int(int64(*game.SteamID)))
	} else {
		doc.Set("steamid", document.Null())
	}
	doc.Set("gogid", document.String(game.GOGID))
	doc.Set("humblestoreid", document.String(game.HumbleStoreID))
	doc.Set("runner", document.String(i.RunnerSlug()))
	// installer_slug duplicates slug for older clients.
	doc.Set("slug", document.String(i.Slug))
	doc.Set("installer_slug", document.String(i.Slug))
	return doc
}

func (i *Installer) YAML(withMetadata bool) ([]byte, error) {
	return i.Document(withMetadata).YAML()
}

func (i *Installer) JSON(withMetadata bool) ([]byte, error) {
	return i.Document(withMetadata).JSON("  ")
}

func parseInstallerContent(content string) *document.Map {
	v, err := document.Parse([]byte(content))
	if err != nil || !v.Truthy() {
		return document.NewMap()
	}
	if items, ok := v.AsList(); ok {
		v = items[0]
	}
	m, ok := v.AsMap()
	if !ok {
		return document.NewMap()
	}
	return m
}

// DefaultInstallerContent is the script given to a new installer that was
// submitted without one. Steam games get a Steam script and version; version
// is empty otherwise.
func DefaultInstallerContent(game *Game) (content string, version string, err error) {
	doc := document.NewMap()
	if _, steam := game.SteamSupport(); steam {
		gameSection := document.NewMap()
		gameSection.Set("appid", document.Int(int64(*game.SteamID)))
		doc.Set("game", document.Object(gameSection))
		version = SteamVersion
	} else {
		location := document.NewMap()
		location.Set("file_id", document.String("http://location"))
		unredistributable := document.NewMap()
		unredistributable.Set("unredistribuable_file", document.String("N/A"))
		doc.Set("files", document.List(document.Object(location), document.Object(unredistributable)))

		move := document.NewMap()
		move.Set("src", document.String("file_id"))
		move.Set("dst", document.String("$GAMEDIR"))
		step := document.NewMap()
		step.Set("move", document.Object(move))
		doc.Set("installer", document.List(document.Object(step)))
	}

	raw, err := doc.YAML()
	if err != nil {
		return "", "", err
	}
	return string(raw), version, nil
}

type InstallerIssue struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	InstallerID   uint      `json:"installerId" gorm:"not null;index"`
	SubmittedByID uuid.UUID `json:"submittedById" gorm:"type:uuid;not null"`
	SubmittedOn   time.Time `json:"submittedOn" gorm:"autoCreateTime"`
	Description   string    `json:"description" gorm:"type:text;not null"`

	// Relations
	Installer   *Installer `json:"-" gorm:"foreignKey:InstallerID;constraint:OnDelete:CASCADE"`
	SubmittedBy *User      `json:"-" gorm:"foreignKey:SubmittedByID"`
}
