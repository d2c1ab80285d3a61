package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dom/game-catalog/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	password string
	staff    bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	username := fmt.Sprintf("testuser_%s", uuid.New().String()[:8])
	return &UserBuilder{
		username: username,
		email:    username + "@example.com",
		password: "testpassword123",
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithEmail sets the email address
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Staff marks the user as a moderator
func (b *UserBuilder) Staff() *UserBuilder {
	b.staff = true
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	// MinCost keeps the suite fast; the hash format is the same.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		IsStaff:      b.staff,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		IsStaff  bool   `json:"isStaff"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates the user in the database and logs in through
// the API, returning the user and an access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB)

	body, _ := json.Marshal(map[string]string{
		"username": user.Username,
		"password": password,
	})
	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return user, authResp.AccessToken
}

// PlatformBuilder creates test platforms
type PlatformBuilder struct {
	name     string
	slug     string
	template string
}

// NewPlatformBuilder creates a platform without a default installer
func NewPlatformBuilder(name, slug string) *PlatformBuilder {
	return &PlatformBuilder{name: name, slug: slug}
}

// WithDefaultInstaller sets the raw JSON template
func (b *PlatformBuilder) WithDefaultInstaller(template string) *PlatformBuilder {
	b.template = template
	return b
}

// Build creates the platform in the database
func (b *PlatformBuilder) Build(t *testing.T, db *gorm.DB) *domain.Platform {
	t.Helper()

	platform := &domain.Platform{Name: b.name, Slug: b.slug}
	if b.template != "" {
		platform.DefaultInstaller = datatypes.JSON(b.template)
	}

	if err := db.Create(platform).Error; err != nil {
		t.Fatalf("failed to create platform: %v", err)
	}

	return platform
}

// GameBuilder creates test games
type GameBuilder struct {
	name      string
	slug      string
	year      *int
	steamID   *uint
	public    bool
	platforms []*domain.Platform
}

// NewGameBuilder creates a public game with the given name and slug
func NewGameBuilder(name, slug string) *GameBuilder {
	return &GameBuilder{name: name, slug: slug, public: true}
}

// WithYear sets the release year
func (b *GameBuilder) WithYear(year int) *GameBuilder {
	b.year = &year
	return b
}

// WithSteamID sets the Steam app id
func (b *GameBuilder) WithSteamID(id uint) *GameBuilder {
	b.steamID = &id
	return b
}

// Private makes the game unpublished
func (b *GameBuilder) Private() *GameBuilder {
	b.public = false
	return b
}

// WithPlatforms links the game to platforms
func (b *GameBuilder) WithPlatforms(platforms ...*domain.Platform) *GameBuilder {
	b.platforms = append(b.platforms, platforms...)
	return b
}

// Build creates the game and its platform links in the database
func (b *GameBuilder) Build(t *testing.T, db *gorm.DB) *domain.Game {
	t.Helper()

	game := &domain.Game{
		Name:      b.name,
		Slug:      b.slug,
		Year:      b.year,
		SteamID:   b.steamID,
		IsPublic:  b.public,
		Platforms: b.platforms,
	}

	// Platforms already exist; only the join rows are written.
	if err := db.Omit("Platforms.*").Create(game).Error; err != nil {
		t.Fatalf("failed to create game: %v", err)
	}

	return game
}

// BuildRunner creates a test runner
func BuildRunner(t *testing.T, db *gorm.DB, name, slug string) *domain.Runner {
	t.Helper()

	runner := &domain.Runner{Name: name, Slug: slug}
	if err := db.Create(runner).Error; err != nil {
		t.Fatalf("failed to create runner: %v", err)
	}
	return runner
}

// InstallerBuilder creates stored installers without going through the
// service, so slugs are taken as given
type InstallerBuilder struct {
	game      *domain.Game
	user      *domain.User
	runner    *domain.Runner
	slug      string
	version   string
	content   string
	published bool
}

// NewInstallerBuilder creates a published installer for game
func NewInstallerBuilder(game *domain.Game, slug string) *InstallerBuilder {
	return &InstallerBuilder{
		game:      game,
		slug:      slug,
		version:   "Setup",
		content:   "files:\n  - setup: N/A:Select the installer\ninstaller:\n  - task:\n      name: wineexec\n      executable: setup\n",
		published: true,
	}
}

// WithUser sets the author
func (b *InstallerBuilder) WithUser(user *domain.User) *InstallerBuilder {
	b.user = user
	return b
}

// WithRunner sets the runner
func (b *InstallerBuilder) WithRunner(runner *domain.Runner) *InstallerBuilder {
	b.runner = runner
	return b
}

// WithVersion sets the version label
func (b *InstallerBuilder) WithVersion(version string) *InstallerBuilder {
	b.version = version
	return b
}

// WithContent sets the raw script
func (b *InstallerBuilder) WithContent(content string) *InstallerBuilder {
	b.content = content
	return b
}

// Unpublished keeps the installer out of game lookups
func (b *InstallerBuilder) Unpublished() *InstallerBuilder {
	b.published = false
	return b
}

// Build creates the installer in the database
func (b *InstallerBuilder) Build(t *testing.T, db *gorm.DB) *domain.Installer {
	t.Helper()

	if b.user == nil {
		b.user, _ = NewUserBuilder().Build(t, db)
	}

	installer := &domain.Installer{
		GameID:    b.game.ID,
		UserID:    b.user.ID,
		Slug:      b.slug,
		Version:   b.version,
		Content:   b.content,
		Published: b.published,
	}
	if b.runner != nil {
		installer.RunnerID = &b.runner.ID
	}

	if err := db.Omit(clause.Associations).Create(installer).Error; err != nil {
		t.Fatalf("failed to create installer: %v", err)
	}

	installer.Game = b.game
	installer.User = b.user
	installer.Runner = b.runner
	return installer
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
