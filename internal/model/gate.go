package model

import "time"

// GrantKind distinguishes the two access-grant tiers: durable grants are
// earned by verifying a magic link and survive browser restarts; ephemeral
// grants come from skipping email capture and live only as long as the
// browser session that holds the cookie.
type GrantKind string

const (
	GrantDurable   GrantKind = "durable"
	GrantEphemeral GrantKind = "ephemeral"
)

type AccessGrant struct {
	ID        int64      `json:"id"`
	Token     string     `json:"token"`
	Kind      GrantKind  `json:"kind"`
	Email     *string    `json:"email"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Valid reports whether the grant still confers site access at the given
// time. Durable grants expire server-side; ephemeral grants are bounded by
// the browser-session cookie that carries them, so any row that still
// resolves is valid.
func (g *AccessGrant) Valid(now time.Time) bool {
	if g == nil {
		return false
	}
	if g.Kind == GrantDurable {
		return g.ExpiresAt != nil && now.Before(*g.ExpiresAt)
	}
	return true
}

// ScreenKind enumerates the intro screen types the gate can present.
type ScreenKind string

const (
	ScreenQuestion ScreenKind = "question"
	ScreenEmail    ScreenKind = "email"
	ScreenInfo     ScreenKind = "info"
	ScreenCustom   ScreenKind = "custom"
)

type ScreenOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type IntroScreen struct {
	ID        int64          `json:"id"`
	Kind      ScreenKind     `json:"kind"`
	SortOrder int            `json:"sort_order"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Options   []ScreenOption `json:"options"`
	AllowSkip bool           `json:"allow_skip"`
	CreatedAt time.Time      `json:"created_at"`
}
