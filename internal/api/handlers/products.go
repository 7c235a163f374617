package handlers

import (
	"context"
	"net/http"

	"topproducts/internal/api/utils"
	"topproducts/internal/products"
	"topproducts/internal/topfive"
)

// Runner is satisfied by *topfive.Service.
type Runner interface {
	Run(ctx context.Context) (products.Result, error)
}

func NewTopFiveProductsHandler(svc Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED", nil)
			return
		}

		result, err := svc.Run(r.Context())
		if err != nil {
			WriteRunError(w, err)
			return
		}

		utils.WriteJSON(w, http.StatusOK, result)
	}
}

// WriteRunError writes the generic failure response for err. It never
// includes partial data.
func WriteRunError(w http.ResponseWriter, err error) {
	status, message, code := RunErrorResponse(err)
	utils.WriteError(w, status, message, code, nil)
}

func RunErrorResponse(err error) (status int, message, code string) {
	switch topfive.Classify(err) {
	case topfive.ClassTimeout:
		return http.StatusGatewayTimeout, "Query timeout", "SQL_TIMEOUT"
	case topfive.ClassConfiguration:
		return http.StatusInternalServerError, "Database configuration invalid", "CONFIG_ERROR"
	case topfive.ClassAuthentication:
		return http.StatusInternalServerError, "Database authentication failed", "AUTH_ERROR"
	case topfive.ClassConnection:
		return http.StatusInternalServerError, "Database connection failed", "DB_UNAVAILABLE"
	case topfive.ClassQuery:
		return http.StatusInternalServerError, "Query execution failed", "DB_ERROR"
	default:
		return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
	}
}
