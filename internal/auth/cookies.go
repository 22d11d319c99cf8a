package auth

// Cookie names shared by the handlers, middleware, and gate. Both cookies
// carry opaque store-backed tokens; neither embeds claims.
const (
	SessionCookie = "solstice_session"
	AccessCookie  = "solstice_access"
)
