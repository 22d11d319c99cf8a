package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/rowanhale/solstice/internal/auth"
	"github.com/rowanhale/solstice/internal/store"
	ws "github.com/rowanhale/solstice/internal/websocket"
)

type SubscriberHandler struct {
	subscriberStore *store.SubscriberStore
	hub             *ws.Hub
	logger          *slog.Logger
}

func NewSubscriberHandler(ss *store.SubscriberStore, hub *ws.Hub, logger *slog.Logger) *SubscriberHandler {
	return &SubscriberHandler{
		subscriberStore: ss,
		hub:             hub,
		logger:          logger,
	}
}

// Subscribe records an email and optional question response from the gate's
// email screen. Upsert semantics: a repeat email updates, and a missing
// response never erases a previously stored one.
func (h *SubscriberHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string  `json:"email"`
		Response *string `json:"response"`
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
	if _, err := mail.ParseAddress(addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	sub, err := h.subscriberStore.Upsert(addr, req.Response)
	if err != nil {
		h.logger.Error("subscriber upsert", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.hub.Broadcast(ws.NewMessage("subscriber", "created", map[string]any{"email": sub.Email}))
	h.logger.Info("subscriber recorded", "email", sub.Email)

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// List returns all subscribers for the admin dashboard.
func (h *SubscriberHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriberStore.List()
	if err != nil {
		h.logger.Error("list subscribers", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"subscribers": subs})
}
