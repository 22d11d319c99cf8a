package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rowanhale/solstice/internal/auth"
	"github.com/rowanhale/solstice/internal/store"
)

type AdminHandler struct {
	sessionStore    *store.SessionStore
	subscriberStore *store.SubscriberStore
	logger          *slog.Logger
}

func NewAdminHandler(ss *store.SessionStore, subs *store.SubscriberStore, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		sessionStore:    ss,
		subscriberStore: subs,
		logger:          logger,
	}
}

// Dashboard is the admin landing route. The front end owns presentation;
// this returns the summary data it renders.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	count, err := h.subscriberStore.Count()
	if err != nil {
		h.logger.Error("count subscribers", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"email":       auth.Email(r.Context()),
		"subscribers": count,
	})
}

// RevokeSessions force-deletes every session for an email. This is the
// explicit invalidation path for the stored admin snapshot: revoke, then the
// next login re-evaluates the policy.
func (h *AdminHandler) RevokeSessions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	addr := auth.NormalizeEmail(req.Email)
	if addr == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.sessionStore.DeleteByEmail(addr); err != nil {
		h.logger.Error("revoke sessions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.logger.Info("sessions revoked", "email", addr)
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
