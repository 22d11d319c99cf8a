package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rowanhale/solstice/internal/auth"
	"github.com/rowanhale/solstice/internal/email"
	"github.com/rowanhale/solstice/internal/gate"
	"github.com/rowanhale/solstice/internal/handler"
	"github.com/rowanhale/solstice/internal/middleware"
	"github.com/rowanhale/solstice/internal/store"
	ws "github.com/rowanhale/solstice/internal/websocket"
)

type Config struct {
	BaseURL     string
	AdminEmail  string
	EmailClient *email.Client
}

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	authH          *handler.AuthHandler
	gateH          *handler.GateHandler
	subscriberH    *handler.SubscriberHandler
	screenH        *handler.ScreenHandler
	adminH         *handler.AdminHandler
	sessionStore   *store.SessionStore
	magicLinkStore *store.MagicLinkStore
	grantStore     *store.GrantStore
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	sessionStore := store.NewSessionStore(db)
	magicLinkStore := store.NewMagicLinkStore(db)
	grantStore := store.NewGrantStore(db)
	subscriberStore := store.NewSubscriberStore(db)
	screenStore := store.NewScreenStore(db)

	policy := auth.NewAdminEmailPolicy(cfg.AdminEmail)
	siteGate := gate.New(sessionStore, grantStore, screenStore, nil)
	secureCookies := strings.HasPrefix(cfg.BaseURL, "https://")

	return &Server{
		db:             db,
		hub:            hub,
		authH:          handler.NewAuthHandler(sessionStore, magicLinkStore, grantStore, policy, cfg.EmailClient, hub, secureCookies, logger.With("component", "auth")),
		gateH:          handler.NewGateHandler(siteGate, grantStore, secureCookies, logger.With("component", "gate")),
		subscriberH:    handler.NewSubscriberHandler(subscriberStore, hub, logger.With("component", "subscriber")),
		screenH:        handler.NewScreenHandler(screenStore, logger.With("component", "screen")),
		adminH:         handler.NewAdminHandler(sessionStore, subscriberStore, logger.With("component", "admin")),
		sessionStore:   sessionStore,
		magicLinkStore: magicLinkStore,
		grantStore:     grantStore,
		rateLimiter:    middleware.NewRateLimiter(10, time.Minute),
		logger:         logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// MagicLinkStore returns the magic link store for cleanup tasks.
func (s *Server) MagicLinkStore() *store.MagicLinkStore {
	return s.magicLinkStore
}

// GrantStore returns the access grant store for cleanup tasks.
func (s *Server) GrantStore() *store.GrantStore {
	return s.grantStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /login", s.authH.LoginPage)
	mux.HandleFunc("POST /api/auth/magic-link", s.rateLimitedHandler(s.authH.MagicLink))
	mux.HandleFunc("GET /auth/verify", s.authH.Verify)
	mux.HandleFunc("GET /api/session", s.authH.Probe)
	mux.HandleFunc("POST /logout", s.authH.Logout)

	// Gate + subscriber capture
	mux.HandleFunc("GET /api/gate", s.gateH.Status)
	mux.HandleFunc("POST /api/gate/skip", s.gateH.Skip)
	mux.HandleFunc("POST /api/subscribe", s.rateLimitedHandler(s.subscriberH.Subscribe))

	// Admin routes — session required, admin flag required
	authMw := middleware.RequireAuth(s.sessionStore)
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return authMw(middleware.RequireAdmin(h))
	}

	mux.Handle("GET /admin", adminOnly(s.adminH.Dashboard))
	mux.Handle("GET /admin/ws", adminOnly(ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket"))))
	mux.Handle("POST /api/admin/revoke-sessions", adminOnly(s.adminH.RevokeSessions))
	mux.Handle("GET /api/admin/subscribers", adminOnly(s.subscriberH.List))
	mux.Handle("GET /api/admin/screens", adminOnly(s.screenH.List))
	mux.Handle("POST /api/admin/screens", adminOnly(s.screenH.Create))
	mux.Handle("PUT /api/admin/screens/{id}", adminOnly(s.screenH.Update))
	mux.Handle("DELETE /api/admin/screens/{id}", adminOnly(s.screenH.Delete))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
