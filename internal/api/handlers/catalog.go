package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dom/game-catalog/internal/document"
	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: logger}
}

type CompanyRequest struct {
	Name    string `json:"name"`
	Website string `json:"website"`
	Logo    string `json:"logo"`
}

type GenreRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type RunnerRequest struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Website string `json:"website"`
}

type PlatformResponse struct {
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	DefaultInstaller json.RawMessage `json:"defaultInstaller"`
}

func toPlatformResponse(platform *domain.Platform) PlatformResponse {
	resp := PlatformResponse{Name: platform.Name, Slug: platform.Slug, DefaultInstaller: json.RawMessage("null")}
	if len(platform.DefaultInstaller) > 0 {
		resp.DefaultInstaller = json.RawMessage(platform.DefaultInstaller)
	}
	return resp
}

func (h *CatalogHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalogService.ListGenres(r.Context())
	if err != nil {
		h.writeError(w, "list genres", err)
		return
	}

	resp := make([]NamedEntry, 0, len(genres))
	for _, g := range genres {
		resp = append(resp, NamedEntry{Name: g.Name, Slug: g.Slug})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req GenreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	genre := &domain.Genre{Name: req.Name, Slug: req.Slug}
	if err := h.catalogService.CreateGenre(r.Context(), genre); err != nil {
		h.writeError(w, "create genre", err)
		return
	}
	writeJSON(w, http.StatusCreated, NamedEntry{Name: genre.Name, Slug: genre.Slug})
}

func (h *CatalogHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.catalogService.GetCompany(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "get company", err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *CatalogHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	company := &domain.Company{Name: req.Name, Website: req.Website, Logo: req.Logo}
	if err := h.catalogService.SaveCompany(r.Context(), company); err != nil {
		h.writeError(w, "create company", err)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

// UpdateCompany renames a company; its slug follows the new name.
func (h *CatalogHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.catalogService.GetCompany(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "get company", err)
		return
	}

	var req CompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name != "" {
		company.Name = req.Name
	}
	if req.Website != "" {
		company.Website = req.Website
	}
	if req.Logo != "" {
		company.Logo = req.Logo
	}

	if err := h.catalogService.SaveCompany(r.Context(), company); err != nil {
		h.writeError(w, "update company", err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *CatalogHandler) GetPlatform(w http.ResponseWriter, r *http.Request) {
	platform, err := h.catalogService.GetPlatform(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "get platform", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlatformResponse(platform))
}

// SetDefaultInstaller takes the template as a YAML or JSON mapping. An empty
// body or an empty mapping removes the template.
func (h *CatalogHandler) SetDefaultInstaller(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var template *document.Map
	if len(body) > 0 {
		parsed, ok := document.ParseMap(body)
		if !ok {
			http.Error(w, "Default installer must be a mapping", http.StatusBadRequest)
			return
		}
		if parsed.Len() > 0 {
			template = parsed
		}
	}

	platform, err := h.catalogService.SetDefaultInstaller(r.Context(), chi.URLParam(r, "slug"), template)
	if err != nil {
		h.writeError(w, "set default installer", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlatformResponse(platform))
}

func (h *CatalogHandler) CreateRunner(w http.ResponseWriter, r *http.Request) {
	var req RunnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	runner := &domain.Runner{Name: req.Name, Slug: req.Slug, Website: req.Website}
	if err := h.catalogService.CreateRunner(r.Context(), runner); err != nil {
		h.writeError(w, "create runner", err)
		return
	}
	writeJSON(w, http.StatusCreated, runner)
}

func (h *CatalogHandler) DeleteRunner(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteRunner(r.Context(), chi.URLParam(r, "slug")); err != nil {
		h.writeError(w, "delete runner", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrCompanyNotFound),
		errors.Is(err, domain.ErrPlatformNotFound),
		errors.Is(err, domain.ErrRunnerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		http.Error(w, "Slug already exists", http.StatusConflict)
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
