package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanhale/solstice/internal/database"
	"github.com/rowanhale/solstice/internal/store"
	ws "github.com/rowanhale/solstice/internal/websocket"
)

func setupSubscriberHandler(t *testing.T) (*SubscriberHandler, *store.SubscriberStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	subs := store.NewSubscriberStore(db)
	return NewSubscriberHandler(subs, ws.NewHub(logger), logger), subs
}

func TestSubscribe(t *testing.T) {
	h, subs := setupSubscriberHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(`{"email":"Alice@Example.com","response":"yes"}`))
	w := httptest.NewRecorder()
	h.Subscribe(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])

	sub, err := subs.GetByEmail("alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.NotNil(t, sub.Response)
	assert.Equal(t, "yes", *sub.Response)
}

func TestSubscribeRepeatKeepsResponse(t *testing.T) {
	h, subs := setupSubscriberHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(`{"email":"a@x.com","response":"no"}`))
	h.Subscribe(httptest.NewRecorder(), r)

	// Second submit from the email screen carries no response
	r = httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(`{"email":"a@x.com"}`))
	w := httptest.NewRecorder()
	h.Subscribe(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	sub, err := subs.GetByEmail("a@x.com")
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.NotNil(t, sub.Response)
	assert.Equal(t, "no", *sub.Response)
}

func TestSubscribeValidation(t *testing.T) {
	h, _ := setupSubscriberHandler(t)

	for _, body := range []string{`{`, `{}`, `{"email":"nope"}`} {
		r := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(body))
		w := httptest.NewRecorder()
		h.Subscribe(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestSubscriberList(t *testing.T) {
	h, subs := setupSubscriberHandler(t)

	_, err := subs.Upsert("a@x.com", nil)
	require.NoError(t, err)
	_, err = subs.Upsert("b@x.com", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/admin/subscribers", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["subscribers"], 2)
}
