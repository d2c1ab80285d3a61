package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dom/game-catalog/internal/api/middleware"
	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type GameHandler struct {
	gameService *service.GameService
	logger      *zap.Logger
}

func NewGameHandler(gameService *service.GameService, logger *zap.Logger) *GameHandler {
	return &GameHandler{gameService: gameService, logger: logger}
}

type GameListRequest struct {
	Games []string `json:"games"`
}

type GameListResponse struct {
	Count    int64              `json:"count"`
	Next     *string            `json:"next"`
	Previous *string            `json:"previous"`
	Results  []GameSummaryEntry `json:"results"`
}

type GameSummaryEntry struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Year      *int     `json:"year"`
	Platforms []string `json:"platforms"`
	Icon      string   `json:"icon"`
	TitleLogo string   `json:"titleLogo"`
}

type NamedEntry struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type GameDetailResponse struct {
	ID            uint              `json:"id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Year          *int              `json:"year"`
	Platforms     []NamedEntry      `json:"platforms"`
	Genres        []NamedEntry      `json:"genres"`
	Publisher     *NamedEntry       `json:"publisher"`
	Developer     *NamedEntry       `json:"developer"`
	Website       string            `json:"website"`
	Icon          string            `json:"icon"`
	TitleLogo     string            `json:"titleLogo"`
	Description   string            `json:"description"`
	Flags         []string          `json:"flags"`
	SteamID       *uint             `json:"steamid"`
	GOGID         string            `json:"gogid"`
	HumbleStoreID string            `json:"humblestoreid"`
	Metadata      map[string]string `json:"metadata"`
	HasInstaller  bool              `json:"hasInstaller"`
	IsPublic      bool              `json:"isPublic"`
}

type ScreenshotResponse struct {
	ID          uint      `json:"id"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type SubmitGameRequest struct {
	Name        string   `json:"name"`
	Year        *int     `json:"year"`
	Website     string   `json:"website"`
	Description string   `json:"description"`
	Platforms   []string `json:"platforms"`
	Genres      []string `json:"genres"`
	Publisher   string   `json:"publisher"`
	Developer   string   `json:"developer"`
	SteamID     *uint    `json:"steamid"`
}

type SubmissionResponse struct {
	ID        uint               `json:"id"`
	Game      GameDetailResponse `json:"game"`
	CreatedAt time.Time          `json:"createdAt"`
}

func toGameSummary(game *domain.Game) GameSummaryEntry {
	return GameSummaryEntry{
		ID:        game.ID,
		Name:      game.Name,
		Slug:      game.Slug,
		Year:      game.Year,
		Platforms: game.PlatformSlugs(),
		Icon:      game.Icon,
		TitleLogo: game.TitleLogo,
	}
}

func toGameDetail(game *domain.Game, hasInstaller bool) GameDetailResponse {
	resp := GameDetailResponse{
		ID:            game.ID,
		Name:          game.Name,
		Slug:          game.Slug,
		Year:          game.Year,
		Platforms:     []NamedEntry{},
		Genres:        []NamedEntry{},
		Website:       game.Website,
		Icon:          game.Icon,
		TitleLogo:     game.TitleLogo,
		Description:   game.Description,
		Flags:         game.Flags.Names(),
		SteamID:       game.SteamID,
		GOGID:         game.GOGID,
		HumbleStoreID: game.HumbleStoreID,
		Metadata:      map[string]string{},
		HasInstaller:  hasInstaller,
		IsPublic:      game.IsPublic,
	}
	for _, p := range game.Platforms {
		resp.Platforms = append(resp.Platforms, NamedEntry{Name: p.Name, Slug: p.Slug})
	}
	for _, g := range game.Genres {
		resp.Genres = append(resp.Genres, NamedEntry{Name: g.Name, Slug: g.Slug})
	}
	if game.Publisher != nil {
		resp.Publisher = &NamedEntry{Name: game.Publisher.Name, Slug: game.Publisher.Slug}
	}
	if game.Developer != nil {
		resp.Developer = &NamedEntry{Name: game.Developer.Name, Slug: game.Developer.Slug}
	}
	for _, m := range game.Metadata {
		resp.Metadata[m.Key] = m.Value
	}
	return resp
}

// List serves GET and POST. POST accepts the slug filter as a JSON body,
// for clients with more slugs than fit in a URL.
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	input := service.GameListInput{
		Slugs:          query["games"],
		Search:         query.Get("search"),
		WithInstallers: query.Get("with_installers") != "",
	}

	if r.Method == http.MethodPost {
		var req GameListRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		input.Slugs = req.Games
	}

	var err error
	if input.Page, err = intParam(query, "page"); err != nil {
		http.Error(w, "Invalid page", http.StatusBadRequest)
		return
	}
	if input.PageSize, err = intParam(query, "page_size"); err != nil {
		http.Error(w, "Invalid page size", http.StatusBadRequest)
		return
	}

	page, err := h.gameService.List(r.Context(), input)
	if err != nil {
		h.logger.Error("list games failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := GameListResponse{
		Count:   page.Count,
		Results: make([]GameSummaryEntry, 0, len(page.Games)),
	}
	if page.HasNext() {
		resp.Next = pageURL(r, page.Page+1)
	}
	if page.HasPrevious() {
		resp.Previous = pageURL(r, page.Page-1)
	}
	for _, game := range page.Games {
		resp.Results = append(resp.Results, toGameSummary(game))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameService.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "get game", err)
		return
	}

	hasInstaller, err := h.gameService.HasInstaller(r.Context(), game)
	if err != nil {
		h.writeError(w, "check installers", err)
		return
	}

	writeJSON(w, http.StatusOK, toGameDetail(game, hasInstaller))
}

func (h *GameHandler) Screenshots(w http.ResponseWriter, r *http.Request) {
	screenshots, err := h.gameService.Screenshots(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "list screenshots", err)
		return
	}

	resp := make([]ScreenshotResponse, 0, len(screenshots))
	for _, s := range screenshots {
		resp = append(resp, ScreenshotResponse{
			ID:          s.ID,
			Image:       s.Image,
			Description: s.Caption(),
			UploadedAt:  s.UploadedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SubmitGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	submission, err := h.gameService.Submit(r.Context(), actor, service.SubmitGameInput{
		Name:          req.Name,
		Year:          req.Year,
		Website:       req.Website,
		Description:   req.Description,
		PlatformSlugs: req.Platforms,
		GenreSlugs:    req.Genres,
		PublisherSlug: req.Publisher,
		DeveloperSlug: req.Developer,
		SteamID:       req.SteamID,
	})
	if err != nil {
		h.writeError(w, "submit game", err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmissionResponse{
		ID:        submission.ID,
		Game:      toGameDetail(submission.Game, false),
		CreatedAt: submission.CreatedAt,
	})
}

func (h *GameHandler) Publish(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameService.Publish(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "publish game", err)
		return
	}

	hasInstaller, err := h.gameService.HasInstaller(r.Context(), game)
	if err != nil {
		h.writeError(w, "check installers", err)
		return
	}

	writeJSON(w, http.StatusOK, toGameDetail(game, hasInstaller))
}

func (h *GameHandler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		http.Error(w, "Game not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrEmptyGameName):
		http.Error(w, "Game name is required", http.StatusBadRequest)
	case errors.Is(err, domain.ErrPlatformNotFound),
		errors.Is(err, domain.ErrGenreNotFound),
		errors.Is(err, domain.ErrCompanyNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func intParam(query url.Values, name string) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

func pageURL(r *http.Request, page int) *string {
	u := *r.URL
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	u.Host = r.Host
	query := u.Query()
	query.Set("page", strconv.Itoa(page))
	u.RawQuery = query.Encode()
	s := u.String()
	return &s
}
