package middleware

import (
	"net/http"

	"solar-backend/internal/config"

	"github.com/rs/cors"
)

// NewCORS builds the CORS handler from the configured origin, method
// and header allow-lists. Credentials are allowed because the mobile
// app sends the bearer token on every call.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
