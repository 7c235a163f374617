package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"topproducts/internal/config"
	"topproducts/internal/db"
	"topproducts/internal/db/dbtest"

	"github.com/stretchr/testify/require"
)

func healthDeps(c *dbtest.Connector, vars map[string]string) HealthDeps {
	opt := db.DefaultOptions()
	opt.Connector = c.Func()
	return HealthDeps{
		Lookup: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
		DB: opt,
	}
}

func TestHealthHandler(t *testing.T) {
	c := &dbtest.Connector{}
	h := NewHealthHandler(healthDeps(c, map[string]string{config.EnvConnectionString: "server=x"}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.Equal(t, 1, c.Closed())
	require.Empty(t, c.Queries())
}

func TestHealthHandlerUnavailable(t *testing.T) {
	c := &dbtest.Connector{PingErr: errors.New("login failed")}
	h := NewHealthHandler(healthDeps(c, map[string]string{config.EnvConnectionString: "server=x"}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "DB_UNAVAILABLE")
}

func TestHealthHandlerNotConfigured(t *testing.T) {
	c := &dbtest.Connector{}
	h := NewHealthHandler(healthDeps(c, map[string]string{}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "CONFIG_ERROR")
	require.Zero(t, c.Opened())
}

func TestHealthHandlerMethodNotAllowed(t *testing.T) {
	c := &dbtest.Connector{}
	h := NewHealthHandler(healthDeps(c, map[string]string{config.EnvConnectionString: "server=x"}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/health", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
	require.Contains(t, rec.Body.String(), "METHOD_NOT_ALLOWED")
	require.Zero(t, c.Opened())
}

func TestHealthHandlerUsesPingTimeout(t *testing.T) {
	c := &dbtest.Connector{PingBlocks: true}
	deps := healthDeps(c, map[string]string{config.EnvConnectionString: "server=x"})
	deps.DB.PingTimeout = 50 * time.Millisecond
	h := NewHealthHandler(deps)

	start := time.Now()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "DB_UNAVAILABLE")
	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, c.Opened(), c.Closed())
}
