package handlers

import (
	"errors"
	"net/http"

	"github.com/dom/game-catalog/internal/api/middleware"
	"github.com/dom/game-catalog/internal/domain"
	"github.com/dom/game-catalog/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type LibraryHandler struct {
	libraryService *service.LibraryService
	logger         *zap.Logger
}

func NewLibraryHandler(libraryService *service.LibraryService, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService, logger: logger}
}

type LibraryResponse struct {
	Username string             `json:"username,omitempty"`
	Games    []GameSummaryEntry `json:"games"`
}

func toLibraryResponse(library *domain.GameLibrary, username string) LibraryResponse {
	resp := LibraryResponse{
		Username: username,
		Games:    make([]GameSummaryEntry, 0, len(library.Games)),
	}
	for _, game := range library.Games {
		resp.Games = append(resp.Games, toGameSummary(game))
	}
	return resp
}

func (h *LibraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	library, err := h.libraryService.GetByUsername(r.Context(), username)
	if err != nil {
		h.writeError(w, "get library", err)
		return
	}

	writeJSON(w, http.StatusOK, toLibraryResponse(library, username))
}

func (h *LibraryHandler) AddGame(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	library, err := h.libraryService.AddGame(r.Context(), actor, chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "add game to library", err)
		return
	}

	writeJSON(w, http.StatusOK, toLibraryResponse(library, ""))
}

func (h *LibraryHandler) RemoveGame(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	library, err := h.libraryService.RemoveGame(r.Context(), actor, chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, "remove game from library", err)
		return
	}

	writeJSON(w, http.StatusOK, toLibraryResponse(library, ""))
}

func (h *LibraryHandler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrLibraryNotFound):
		http.Error(w, "Library not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrGameNotFound):
		http.Error(w, "Game not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrGameAlreadyInLibrary):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
