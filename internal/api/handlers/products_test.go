package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"topproducts/internal/api/utils"
	"topproducts/internal/config"
	"topproducts/internal/db"
	"topproducts/internal/db/dbtest"
	"topproducts/internal/identity"
	"topproducts/internal/products"
	"topproducts/internal/topfive"

	"github.com/stretchr/testify/require"
)

type runnerFunc func(ctx context.Context) (products.Result, error)

func (f runnerFunc) Run(ctx context.Context) (products.Result, error) { return f(ctx) }

func newFakeService(c *dbtest.Connector, vars map[string]string) *topfive.Service {
	opt := db.DefaultOptions()
	opt.Connector = c.Func()
	return topfive.New(topfive.Deps{
		Lookup: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
		Tokens: identity.Static("tok"),
		DB:     opt,
	})
}

func TestTopFiveProductsHandlerOK(t *testing.T) {
	c := &dbtest.Connector{Table: dbtest.ProductTable(7)}
	h := NewTopFiveProductsHandler(newFakeService(c, map[string]string{config.EnvConnectionString: "server=x"}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/TopFiveProducts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 5)
	for _, obj := range body {
		require.Len(t, obj, len(dbtest.ProductColumns))
		for _, col := range dbtest.ProductColumns {
			require.Contains(t, obj, col)
		}
	}
	require.Equal(t, float64(680), body[0]["ProductID"])
}

func TestTopFiveProductsHandlerEmptyTable(t *testing.T) {
	c := &dbtest.Connector{Table: dbtest.ProductTable(0)}
	h := NewTopFiveProductsHandler(newFakeService(c, map[string]string{config.EnvConnectionString: "server=x"}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/TopFiveProducts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestTopFiveProductsHandlerMethodNotAllowed(t *testing.T) {
	called := false
	h := NewTopFiveProductsHandler(runnerFunc(func(ctx context.Context) (products.Result, error) {
		called = true
		return nil, nil
	}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/TopFiveProducts", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
	require.False(t, called)
}

func TestTopFiveProductsHandlerFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "configuration", err: fmt.Errorf("%w: %w", db.ErrConfiguration, config.ErrConnectionString), status: http.StatusInternalServerError, code: "CONFIG_ERROR"},
		{name: "authentication", err: fmt.Errorf("%w: no identity", identity.ErrAuthentication), status: http.StatusInternalServerError, code: "AUTH_ERROR"},
		{name: "connection", err: fmt.Errorf("%w: refused", db.ErrConnection), status: http.StatusInternalServerError, code: "DB_UNAVAILABLE"},
		{name: "query", err: fmt.Errorf("%w: bad table", products.ErrQuery), status: http.StatusInternalServerError, code: "DB_ERROR"},
		{name: "timeout", err: fmt.Errorf("%w: %w", products.ErrQuery, context.DeadlineExceeded), status: http.StatusGatewayTimeout, code: "SQL_TIMEOUT"},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTopFiveProductsHandler(runnerFunc(func(ctx context.Context) (products.Result, error) {
				return nil, tt.err
			}))

			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/api/TopFiveProducts", nil))

			require.Equal(t, tt.status, rec.Code)
			var body utils.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tt.code, body.Code)
			require.NotContains(t, rec.Body.String(), "ProductID")
		})
	}
}

func TestTopFiveProductsHandlerQueryFailureReleasesConnection(t *testing.T) {
	c := &dbtest.Connector{Table: dbtest.ProductTable(5), QueryErr: errors.New("invalid object name")}
	h := NewTopFiveProductsHandler(newFakeService(c, map[string]string{config.EnvConnectionString: "server=x"}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/TopFiveProducts", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, c.Opened())
	require.Equal(t, 1, c.Closed())
}

func TestTopFiveProductsHandlerConcurrent(t *testing.T) {
	c := &dbtest.Connector{Table: dbtest.ProductTable(5)}
	h := NewTopFiveProductsHandler(newFakeService(c, map[string]string{config.EnvConnectionString: "server=x"}))

	var wg sync.WaitGroup
	codes := make([]int, 10)
	bodies := make([]string, 10)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/api/TopFiveProducts", nil))
			codes[i] = rec.Code
			bodies[i] = rec.Body.String()
		}(i)
	}
	wg.Wait()

	for i := range codes {
		require.Equal(t, http.StatusOK, codes[i])
		require.JSONEq(t, bodies[0], bodies[i])
	}
	require.Equal(t, 10, c.Opened())
	require.Equal(t, 10, c.Closed())
}
