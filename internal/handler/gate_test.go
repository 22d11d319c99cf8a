package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanhale/solstice/internal/auth"
	"github.com/rowanhale/solstice/internal/database"
	"github.com/rowanhale/solstice/internal/gate"
	"github.com/rowanhale/solstice/internal/store"
)

func setupGateHandler(t *testing.T) (*GateHandler, *store.SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := store.NewSessionStore(db)
	grants := store.NewGrantStore(db)
	screens := store.NewScreenStore(db)
	g := gate.New(sessions, grants, screens, nil)
	return NewGateHandler(g, grants, false, logger), sessions
}

func TestGateStatusGatedByDefault(t *testing.T) {
	h, _ := setupGateHandler(t)

	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/api/gate?path=/jobs", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "gated", body["state"])
	assert.NotEmpty(t, body["screens"])
}

func TestGateStatusBypassPath(t *testing.T) {
	h, _ := setupGateHandler(t)

	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/api/gate?path=/blog/hello", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "granted", body["state"])
	assert.NotContains(t, body, "screens")
}

func TestGateStatusDefaultsPathToRoot(t *testing.T) {
	h, _ := setupGateHandler(t)

	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/api/gate", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gated", decodeBody(t, w)["state"])
}

func TestGateSkipThenStatusGranted(t *testing.T) {
	h, _ := setupGateHandler(t)

	w := httptest.NewRecorder()
	h.Skip(w, httptest.NewRequest(http.MethodPost, "/api/gate/skip", nil))
	require.Equal(t, http.StatusOK, w.Code)

	c := cookieByName(t, w, auth.AccessCookie)
	require.NotNil(t, c, "skip must set the access cookie")
	assert.Equal(t, 0, c.MaxAge, "skip cookie is session-scoped, no Max-Age")
	assert.True(t, c.HttpOnly)

	// The same browser session now passes the gate
	r := httptest.NewRequest(http.MethodGet, "/api/gate?path=/jobs", nil)
	r.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: c.Value})
	w = httptest.NewRecorder()
	h.Status(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "granted", decodeBody(t, w)["state"])
}

func TestGateStatusWithSessionCookie(t *testing.T) {
	h, sessions := setupGateHandler(t)

	sess, err := sessions.Create("alice@example.com", false)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/gate?path=/about", nil)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: sess.Token})
	w := httptest.NewRecorder()
	h.Status(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "granted", decodeBody(t, w)["state"])
}
