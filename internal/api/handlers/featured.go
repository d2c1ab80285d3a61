package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/service"
	"go.uber.org/zap"
)

const featuredListLimit = 20

type FeaturedHandler struct {
	featuredService *service.FeaturedService
	logger          *zap.Logger
}

func NewFeaturedHandler(featuredService *service.FeaturedService, logger *zap.Logger) *FeaturedHandler {
	return &FeaturedHandler{featuredService: featuredService, logger: logger}
}

type CreateFeaturedRequest struct {
	Kind        string  `json:"kind"`
	ObjectID    uint    `json:"objectId"`
	Image       string  `json:"image"`
	Description *string `json:"description"`
}

type FeaturedResponse struct {
	ID          uint        `json:"id"`
	Kind        string      `json:"kind"`
	Image       string      `json:"image"`
	Description *string     `json:"description"`
	Target      interface{} `json:"target"`
}

func toFeaturedResponse(item *service.FeaturedItem) FeaturedResponse {
	resp := FeaturedResponse{
		ID:          item.ID,
		Kind:        string(item.Ref.Kind),
		Image:       item.Image,
		Description: item.Description,
	}
	switch {
	case item.Game != nil:
		resp.Target = toGameSummary(item.Game)
	case item.Company != nil:
		resp.Target = NamedEntry{Name: item.Company.Name, Slug: item.Company.Slug}
	case item.Genre != nil:
		resp.Target = NamedEntry{Name: item.Genre.Name, Slug: item.Genre.Slug}
	case item.Platform != nil:
		resp.Target = NamedEntry{Name: item.Platform.Name, Slug: item.Platform.Slug}
	}
	return resp
}

func (h *FeaturedHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := featuredListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	items, err := h.featuredService.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("list featured failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]FeaturedResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toFeaturedResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *FeaturedHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFeaturedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	item, err := h.featuredService.Create(r.Context(), &domain.Featured{
		Ref:         domain.FeaturedRef{Kind: domain.FeaturedKind(req.Kind), ID: req.ObjectID},
		Image:       req.Image,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownFeaturedKind):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrFeaturedTargetNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error("create featured failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toFeaturedResponse(item))
}
