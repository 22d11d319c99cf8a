// Package gate decides whether a visitor may view the site at all. Most
// routes are gated until the visitor either verifies a magic link (durable
// access) or explicitly skips email capture (access for the current browser
// session only).
package gate

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rowanhale/solstice/internal/auth"
	"github.com/rowanhale/solstice/internal/model"
	"github.com/rowanhale/solstice/internal/store"
)

type State string

const (
	// StateGranted means the page renders. Terminal for this page load; a
	// fresh load re-evaluates.
	StateGranted State = "granted"
	// StateGated means the intro screens are shown instead of the page.
	StateGated State = "gated"
)

// DefaultBypass lists route prefixes the gate never blocks: auth pages, the
// admin area, API routes, and the blog.
var DefaultBypass = []string{"/login", "/auth/", "/admin", "/api/", "/blog", "/health", "/static/"}

// Decision is the outcome of one gate evaluation. Screens is populated only
// when gated, in ascending sort order.
type Decision struct {
	State   State               `json:"state"`
	Screens []model.IntroScreen `json:"screens,omitempty"`
}

type Gate struct {
	sessions *store.SessionStore
	grants   *store.GrantStore
	screens  *store.ScreenStore
	bypass   []string
}

func New(sessions *store.SessionStore, grants *store.GrantStore, screens *store.ScreenStore, bypass []string) *Gate {
	if bypass == nil {
		bypass = DefaultBypass
	}
	return &Gate{
		sessions: sessions,
		grants:   grants,
		screens:  screens,
		bypass:   bypass,
	}
}

// Evaluate runs the entry logic for one page load of the given route. Checks
// run in fixed order: bypass list, server session, access grant (durable or
// ephemeral, one validity rule via model.AccessGrant.Valid), then the intro
// screens. There is no implicit grant: exhausting the screens without a
// submit or skip leaves the visitor gated on the next load too.
func (g *Gate) Evaluate(r *http.Request, path string) (Decision, error) {
	if g.Bypassed(path) {
		return Decision{State: StateGranted}, nil
	}

	if cookie, err := r.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		sess, err := g.sessions.GetByToken(cookie.Value)
		if err != nil {
			return Decision{}, fmt.Errorf("gate session check: %w", err)
		}
		if sess != nil {
			return Decision{State: StateGranted}, nil
		}
	}

	if cookie, err := r.Cookie(auth.AccessCookie); err == nil && cookie.Value != "" {
		grant, err := g.grants.GetByToken(cookie.Value)
		if err != nil {
			return Decision{}, fmt.Errorf("gate grant check: %w", err)
		}
		if grant.Valid(time.Now().UTC()) {
			return Decision{State: StateGranted}, nil
		}
	}

	screens, err := g.screens.List()
	if err != nil {
		return Decision{}, fmt.Errorf("gate screens: %w", err)
	}
	if len(screens) == 0 {
		screens = DefaultScreens()
	}
	return Decision{State: StateGated, Screens: screens}, nil
}

// Bypassed reports whether the route is on the fixed bypass list.
func (g *Gate) Bypassed(path string) bool {
	for _, prefix := range g.bypass {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// DefaultScreens is the built-in intro sequence used when none is
// configured: a yes/no question, then email capture with a skip option.
func DefaultScreens() []model.IntroScreen {
	return []model.IntroScreen{
		{
			Kind:      model.ScreenQuestion,
			SortOrder: 0,
			Title:     "Before you come in",
			Body:      "Have you been here before?",
			Options: []model.ScreenOption{
				{Label: "YES", Value: "yes"},
				{Label: "NO", Value: "no"},
			},
		},
		{
			Kind:      model.ScreenEmail,
			SortOrder: 1,
			Title:     "Stay in the loop",
			Body:      "Leave your email and we'll send you a link that works on any device.",
			Options:   []model.ScreenOption{},
			AllowSkip: true,
		},
	}
}
