package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"net/url"
	"strings"

	"github.com/rowanhale/solstice/internal/auth"
	"github.com/rowanhale/solstice/internal/email"
	"github.com/rowanhale/solstice/internal/store"
	ws "github.com/rowanhale/solstice/internal/websocket"
)

// invalidLinkMsg covers not-found, expired, and already-used tokens alike.
// Keeping the sub-cases indistinguishable stops an attacker from probing
// token state.
const invalidLinkMsg = "This link is invalid or has expired. Please request a new one."

const (
	sessionMaxAge = 7 * 24 * 60 * 60
	accessMaxAge  = 365 * 24 * 60 * 60
)

type AuthHandler struct {
	sessionStore   *store.SessionStore
	magicLinkStore *store.MagicLinkStore
	grantStore     *store.GrantStore
	policy         auth.Policy
	emailClient    *email.Client
	hub            *ws.Hub
	secureCookies  bool
	logger         *slog.Logger
}

func NewAuthHandler(
	ss *store.SessionStore,
	mls *store.MagicLinkStore,
	gs *store.GrantStore,
	policy auth.Policy,
	ec *email.Client,
	hub *ws.Hub,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		sessionStore:   ss,
		magicLinkStore: mls,
		grantStore:     gs,
		policy:         policy,
		emailClient:    ec,
		hub:            hub,
		secureCookies:  secureCookies,
		logger:         logger,
	}
}

// LoginPage is the redirect target for unauthenticated admin requests. The
// front end owns presentation; this is a minimal placeholder that keeps the
// route resolvable.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	redirect := r.URL.Query().Get("redirect")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html><title>Sign in</title><p>Request a sign-in link via POST /api/auth/magic-link.</p>`)
	if redirect != "" && isValidRedirect(redirect) {
		fmt.Fprintf(w, `<!-- redirect: %s -->`, url.QueryEscape(redirect))
	}
}

// MagicLink issues a single-use sign-in token and dispatches it. Earlier
// tokens for the same address keep working; each link is independent.
func (h *AuthHandler) MagicLink(w http.ResponseWriter, r *http.Request) {
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
	if _, err := mail.ParseAddress(addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	ml, err := h.magicLinkStore.Create(addr)
	if err != nil {
		h.logger.Error("create magic link", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if h.emailClient.Configured() {
		if err := h.emailClient.SendMagicLink(addr, ml.Token); err != nil {
			h.logger.Error("send magic link", "error", err)
			respondError(w, http.StatusBadGateway, "could not send email, please try again")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}

	// No mail transport configured — surface the link for local testing.
	link := h.emailClient.VerifyLink(ml.Token)
	h.logger.Info("magic link generated (mail not configured)", "email", addr, "link", link)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "link": link})
}

// Verify consumes a magic-link token and completes the login: all prior
// sessions for the email are revoked, a fresh session with a current admin
// snapshot is created, and both the session and durable access cookies are
// set. On failure nothing changes and the visitor requests a new link.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "token is required")
		return
	}

	ml, err := h.magicLinkStore.Consume(token)
	if err != nil {
		h.logger.Error("consume magic link", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if ml == nil {
		respondError(w, http.StatusBadRequest, invalidLinkMsg)
		return
	}

	if err := h.sessionStore.DeleteByEmail(ml.Email); err != nil {
		h.logger.Error("revoke prior sessions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	isAdmin := h.policy.IsAdmin(ml.Email)
	h.logger.Debug("admin policy evaluated", "email", ml.Email, "is_admin", isAdmin)

	sess, err := h.sessionStore.Create(ml.Email, isAdmin)
	if err != nil {
		h.logger.Error("create session", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	grant, err := h.grantStore.CreateDurable(ml.Email)
	if err != nil {
		h.logger.Error("create durable grant", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.setCookie(w, auth.SessionCookie, sess.Token, sessionMaxAge)
	h.setCookie(w, auth.AccessCookie, grant.Token, accessMaxAge)

	h.hub.Broadcast(ws.NewMessage("session", "created", map[string]any{"is_admin": isAdmin}))

	respondJSON(w, http.StatusOK, map[string]any{
		"email":   sess.Email,
		"isAdmin": sess.IsAdmin,
	})
}

// Probe reports the caller's auth and site-access state from the cookies.
// Used by the gate and by UI chrome; never errors on a bad cookie.
func (h *AuthHandler) Probe(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"authenticated": false,
		"hasAccess":     false,
	}

	if cookie, err := r.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		sess, err := h.sessionStore.GetByToken(cookie.Value)
		if err != nil {
			h.logger.Error("session probe", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if sess != nil {
			out["authenticated"] = true
			out["hasAccess"] = true
			out["email"] = sess.Email
			out["isAdmin"] = sess.IsAdmin
		}
	}

	if out["hasAccess"] == false {
		if cookie, err := r.Cookie(auth.AccessCookie); err == nil && cookie.Value != "" {
			grant, err := h.grantStore.GetByToken(cookie.Value)
			if err != nil {
				h.logger.Error("grant probe", "error", err)
				respondError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if grant != nil {
				out["hasAccess"] = true
			}
		}
	}

	respondJSON(w, http.StatusOK, out)
}

// Logout deletes the session row and clears both cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		if sess, err := h.sessionStore.GetByToken(cookie.Value); err == nil && sess != nil {
			if err := h.sessionStore.Delete(sess.ID); err != nil {
				h.logger.Error("delete session", "error", err)
			}
		}
	}

	h.setCookie(w, auth.SessionCookie, "", -1)
	h.setCookie(w, auth.AccessCookie, "", -1)

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})
}

// isValidRedirect checks that a redirect path is a safe relative path.
func isValidRedirect(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.Contains(path, "://")
}
