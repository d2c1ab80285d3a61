package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dom/game-catalog/internal/api/middleware"
	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InstallerHandler struct {
	installerService *service.InstallerService
	logger           *zap.Logger
}

func NewInstallerHandler(installerService *service.InstallerService, logger *zap.Logger) *InstallerHandler {
	return &InstallerHandler{installerService: installerService, logger: logger}
}

type CreateInstallerRequest struct {
	Game        string        `json:"game"`
	Runner      string        `json:"runner"`
	Version     string        `json:"version"`
	Description *string       `json:"description"`
	Notes       string        `json:"notes"`
	Content     string        `json:"content"`
	Rating      domain.Rating `json:"rating"`
}

type UpdateInstallerRequest struct {
	Runner      *string        `json:"runner"`
	Version     *string        `json:"version"`
	Description *string        `json:"description"`
	Notes       *string        `json:"notes"`
	Content     *string        `json:"content"`
	Rating      *domain.Rating `json:"rating"`
}

type InstallerResponse struct {
	ID          uint      `json:"id"`
	Slug        string    `json:"slug"`
	GameSlug    string    `json:"gameSlug"`
	Runner      string    `json:"runner"`
	Version     string    `json:"version"`
	Description *string   `json:"description"`
	Notes       string    `json:"notes"`
	Content     string    `json:"content"`
	Published   bool      `json:"published"`
	Rating      string    `json:"rating"`
	RatingLabel string    `json:"ratingLabel"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ReportIssueRequest struct {
	Description string `json:"description"`
}

type IssueResponse struct {
	ID          uint      `json:"id"`
	Description string    `json:"description"`
	SubmittedOn time.Time `json:"submittedOn"`
}

func toInstallerResponse(installer *domain.Installer) InstallerResponse {
	resp := InstallerResponse{
		ID:          installer.ID,
		Slug:        installer.Slug,
		Runner:      installer.RunnerSlug(),
		Version:     installer.Version,
		Description: installer.Description,
		Notes:       installer.Notes,
		Content:     installer.Content,
		Published:   installer.Published,
		Rating:      string(installer.Rating),
		RatingLabel: installer.Rating.Description(),
		CreatedAt:   installer.CreatedAt,
		UpdatedAt:   installer.UpdatedAt,
	}
	if installer.Game != nil {
		resp.GameSlug = installer.Game.Slug
	}
	return resp
}

// List returns every installer the slug resolves to, followed by the
// default installers of the game with that slug.
func (h *InstallerHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := h.installerService.DocumentsJSON(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "resolve installers", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// withMetadata is false when the clean query flag parses as true. Absent or
// unparsable values keep the catalog metadata.
func withMetadata(r *http.Request) bool {
	clean, err := strconv.ParseBool(r.URL.Query().Get("clean"))
	return err != nil || !clean
}

func (h *InstallerHandler) YAML(w http.ResponseWriter, r *http.Request) {
	installer, err := h.installerService.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "get installer", err)
		return
	}

	data, err := installer.YAML(withMetadata(r))
	if err != nil {
		h.writeError(w, "render installer yaml", err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}

func (h *InstallerHandler) JSON(w http.ResponseWriter, r *http.Request) {
	installer, err := h.installerService.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "get installer", err)
		return
	}

	data, err := installer.JSON(withMetadata(r))
	if err != nil {
		h.writeError(w, "render installer json", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *InstallerHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateInstallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Game == "" {
		http.Error(w, "Game is required", http.StatusBadRequest)
		return
	}

	installer, err := h.installerService.Create(r.Context(), actor, service.CreateInstallerInput{
		GameSlug:    req.Game,
		RunnerSlug:  req.Runner,
		Version:     req.Version,
		Description: req.Description,
		Notes:       req.Notes,
		Content:     req.Content,
		Rating:      req.Rating,
	})
	if err != nil {
		h.writeError(w, "create installer", err)
		return
	}

	writeJSON(w, http.StatusCreated, toInstallerResponse(installer))
}

func (h *InstallerHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateInstallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	installer, err := h.installerService.Update(r.Context(), actor, chi.URLParam(r, "slug"), service.UpdateInstallerInput{
		RunnerSlug:  req.Runner,
		Version:     req.Version,
		Description: req.Description,
		Notes:       req.Notes,
		Content:     req.Content,
		Rating:      req.Rating,
	})
	if err != nil {
		h.writeError(w, "update installer", err)
		return
	}

	writeJSON(w, http.StatusOK, toInstallerResponse(installer))
}

func (h *InstallerHandler) Publish(w http.ResponseWriter, r *http.Request) {
	installer, err := h.installerService.Publish(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "publish installer", err)
		return
	}

	writeJSON(w, http.StatusOK, toInstallerResponse(installer))
}

func (h *InstallerHandler) ReportIssue(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ReportIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	issue, err := h.installerService.ReportIssue(r.Context(), actor, chi.URLParam(r, "slug"), req.Description)
	if err != nil {
		h.writeError(w, "report installer issue", err)
		return
	}

	writeJSON(w, http.StatusCreated, IssueResponse{
		ID:          issue.ID,
		Description: issue.Description,
		SubmittedOn: issue.SubmittedOn,
	})
}

func (h *InstallerHandler) Issues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.installerService.Issues(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "list installer issues", err)
		return
	}

	resp := make([]IssueResponse, 0, len(issues))
	for _, issue := range issues {
		resp = append(resp, IssueResponse{
			ID:          issue.ID,
			Description: issue.Description,
			SubmittedOn: issue.SubmittedOn,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InstallerHandler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInstallerNotFound):
		http.Error(w, "Installer not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrGameNotFound):
		http.Error(w, "Game not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrNotInstallerOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrRunnerNotFound),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidInstallerContent),
		errors.Is(err, domain.ErrEmptyVersion),
		errors.Is(err, domain.ErrVersionTooLong),
		errors.Is(err, domain.ErrEmptyIssueDescription):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
