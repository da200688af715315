package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibin/wikisearch-bot/config"
	"github.com/vibin/wikisearch-bot/internal/adapters/secondary/database"
	"github.com/vibin/wikisearch-bot/internal/core/domain"
	"github.com/vibin/wikisearch-bot/internal/core/services"
	"github.com/vibin/wikisearch-bot/internal/logger"
)

func newTestHandler(t *testing.T) (*Handler, *database.EndpointDatabase) {
	t.Helper()

	db, err := database.NewEndpointDatabase(filepath.Join(t.TempDir(), "config.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.DefaultConfig()
	log := logger.New(slog.LevelError, io.Discard)
	resolver := services.NewEndpointResolver(db, cfg.Search.GlobalDefaultEndpoint, log)

	return NewHandler(resolver, db, nil, cfg, log), db
}

func TestHealth(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatus_NoChatAdapter(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, false, status["connected"])
}

func TestSetEndpoint(t *testing.T) {
	handler, db := newTestHandler(t)

	body := strings.NewReader(`{"endpoint":"https://wiki.example.org/w/api.php"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/tenants/g1/endpoints/wiki", body))

	require.Equal(t, http.StatusOK, rec.Code)

	endpoint, err := db.Get(context.Background(), "g1", "wiki")
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.org/w/api.php", endpoint)

	// Setting through the API seeds the tenant defaults too
	_, err = db.Get(context.Background(), "g1", domain.DefaultAlias)
	assert.NoError(t, err)
}

func TestSetEndpoint_InvalidURL(t *testing.T) {
	handler, _ := newTestHandler(t)

	body := strings.NewReader(`{"endpoint":"not a url"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/tenants/g1/endpoints/wiki", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetEndpoint_InvalidPayload(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/tenants/g1/endpoints/wiki", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEndpoints(t *testing.T) {
	handler, db := newTestHandler(t)
	require.NoError(t, db.Upsert(context.Background(), "g1", "de", "https://de.wikipedia.org/w/api.php"))
	require.NoError(t, db.Upsert(context.Background(), "g2", "fr", "https://fr.wikipedia.org/w/api.php"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tenants/g1/endpoints/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"alias":"de","endpoint":"https://de.wikipedia.org/w/api.php"}]`, rec.Body.String())
}

func TestDeleteEndpoint(t *testing.T) {
	handler, db := newTestHandler(t)
	require.NoError(t, db.Upsert(context.Background(), "g1", "de", "https://de.wikipedia.org/w/api.php"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/tenants/g1/endpoints/de", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := db.Get(context.Background(), "g1", "de")
	assert.Error(t, err)
}

func TestDeleteEndpoint_DefaultProtected(t *testing.T) {
	handler, db := newTestHandler(t)
	require.NoError(t, db.Upsert(context.Background(), "g1", domain.DefaultAlias, "https://en.wikipedia.org/w/api.php"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/tenants/g1/endpoints/default", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := db.Get(context.Background(), "g1", domain.DefaultAlias)
	assert.NoError(t, err)
}
