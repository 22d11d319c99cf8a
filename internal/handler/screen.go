package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rowanhale/solstice/internal/model"
	"github.com/rowanhale/solstice/internal/store"
)

type ScreenHandler struct {
	screenStore *store.ScreenStore
	logger      *slog.Logger
}

func NewScreenHandler(ss *store.ScreenStore, logger *slog.Logger) *ScreenHandler {
	return &ScreenHandler{screenStore: ss, logger: logger}
}

func validScreenKind(k model.ScreenKind) bool {
	switch k {
	case model.ScreenQuestion, model.ScreenEmail, model.ScreenInfo, model.ScreenCustom:
		return true
	}
	return false
}

func (h *ScreenHandler) List(w http.ResponseWriter, r *http.Request) {
	screens, err := h.screenStore.List()
	if err != nil {
		h.logger.Error("list screens", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"screens": screens})
}

func (h *ScreenHandler) Create(w http.ResponseWriter, r *http.Request) {
	var sc model.IntroScreen
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validScreenKind(sc.Kind) {
		respondError(w, http.StatusBadRequest, "invalid screen kind")
		return
	}

	created, err := h.screenStore.Create(sc)
	if err != nil {
		h.logger.Error("create screen", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *ScreenHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid screen id")
		return
	}

	var sc model.IntroScreen
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validScreenKind(sc.Kind) {
		respondError(w, http.StatusBadRequest, "invalid screen kind")
		return
	}

	existing, err := h.screenStore.GetByID(id)
	if err != nil {
		h.logger.Error("get screen", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "screen not found")
		return
	}

	updated, err := h.screenStore.Update(id, sc)
	if err != nil {
		h.logger.Error("update screen", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *ScreenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid screen id")
		return
	}

	if err := h.screenStore.Delete(id); err != nil {
		h.logger.Error("delete screen", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
