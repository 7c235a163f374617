package handlers

import (
	"net/http"

	"topproducts/internal/api/dto"
	"topproducts/internal/api/utils"
	"topproducts/internal/config"
	"topproducts/internal/db"
	"topproducts/internal/identity"
)

type HealthDeps struct {
	Lookup config.LookupFunc
	Tokens identity.TokenProvider
	DB     db.Options
}

func NewHealthHandler(deps HealthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED", nil)
			return
		}

		settings, err := config.ResolveSettings(deps.Lookup)
		if err != nil {
			utils.WriteError(w, http.StatusServiceUnavailable, "Database configuration invalid", "CONFIG_ERROR", nil)
			return
		}

		// The ping is bounded by deps.DB.PingTimeout.
		if err := db.TestConnection(r.Context(), settings, deps.Tokens, deps.DB); err != nil {
			utils.WriteError(w, http.StatusServiceUnavailable, "Database connection failed", "DB_UNAVAILABLE", nil)
			return
		}

		utils.WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
	}
}
