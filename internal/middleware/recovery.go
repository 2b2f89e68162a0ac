package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"solar-backend/pkg/utils"
)

// PanicRecovery keeps a panicking handler from tearing the server
// down. The stack goes to the log, the client gets a plain 500.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic on %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				utils.Error(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
