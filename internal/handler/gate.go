package handler

import (
	"log/slog"
	"net/http"

	"github.com/rowanhale/solstice/internal/auth"
	"github.com/rowanhale/solstice/internal/gate"
	"github.com/rowanhale/solstice/internal/store"
)

type GateHandler struct {
	gate          *gate.Gate
	grantStore    *store.GrantStore
	secureCookies bool
	logger        *slog.Logger
}

func NewGateHandler(g *gate.Gate, gs *store.GrantStore, secureCookies bool, logger *slog.Logger) *GateHandler {
	return &GateHandler{
		gate:          g,
		grantStore:    gs,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Status evaluates the gate for the route the client is about to render.
// Returns granted, or gated plus the ordered intro screens.
func (h *GateHandler) Status(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}

	decision, err := h.gate.Evaluate(r, path)
	if err != nil {
		h.logger.Error("gate evaluate", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, decision)
}

// Skip grants access without an email. The cookie carries no Max-Age, so the
// grant dies with the browser session; only magic-link verification earns
// the durable cookie.
func (h *GateHandler) Skip(w http.ResponseWriter, r *http.Request) {
	grant, err := h.grantStore.CreateEphemeral()
	if err != nil {
		h.logger.Error("create ephemeral grant", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessCookie,
		Value:    grant.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
