package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"topproducts/internal/api/handlers"
	"topproducts/internal/api/middleware"
	"topproducts/internal/api/utils"
	"topproducts/internal/config"
	"topproducts/internal/db"
	"topproducts/internal/identity"
	"topproducts/internal/logger"
	"topproducts/internal/topfive"
)

type ServerDeps struct {
	Lookup  config.LookupFunc
	Tokens  identity.TokenProvider
	DB      db.Options
	Service *topfive.Service
	Logger  logger.LoggerService
}

func NewServer(cfg config.Config, deps ServerDeps) (*http.Server, error) {
	addr := cfg.ListenAddr(deps.Lookup)
	if err := validateListenAddr(addr); err != nil {
		return nil, err
	}
	if deps.Service == nil {
		return nil, errors.New("service is required")
	}

	return &http.Server{
		Addr:              addr,
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}

// NewHandler builds the routed handler. The Functions host forwards requests
// under /api/<FunctionName>.
func NewHandler(cfg config.Config, deps ServerDeps) http.Handler {
	products := handlers.NewTopFiveProductsHandler(deps.Service)

	mux := http.NewServeMux()
	mux.Handle("/api/"+topfive.FunctionName, products)
	mux.Handle("/api/"+strings.ToLower(topfive.FunctionName), products)
	mux.Handle("/api/health", handlers.NewHealthHandler(handlers.HealthDeps{
		Lookup: deps.Lookup,
		Tokens: deps.Tokens,
		DB:     deps.DB,
	}))
	mux.HandleFunc("/", notFoundHandler)

	var h http.Handler = mux
	h = middleware.Logging(deps.Logger, cfg.Debug, h)
	h = middleware.Recover(deps.Logger, h)
	return h
}

func validateListenAddr(addr string) error {
	if addr == "" {
		return errors.New("apiListen is required")
	}

	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.New("apiListen must be in host:port format")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return errors.New("apiListen port is invalid")
	}

	return nil
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteNotFound(w)
}
