package middleware

import (
	"context"
	"net/http"
	"strings"

	"solar-backend/internal/auth"
	"solar-backend/internal/models"
)

type contextKey string

const SubjectIDKey contextKey = "subject_id"
const IdentityKey contextKey = "identity"
const RoleKey contextKey = "role"
const NameKey contextKey = "name"

// AccountFinder looks up staff accounts by ID. Satisfied by
// repositories.AccountRepository.
type AccountFinder interface {
	Get(ctx context.Context, id int) (*models.Account, error)
}

// EmployeeFinder looks up employees by ID. Satisfied by
// repositories.EmployeeRepository.
type EmployeeFinder interface {
	Get(ctx context.Context, id int) (*models.Employee, error)
}

type AuthMiddleware struct {
	tokens    *auth.TokenManager
	accounts  AccountFinder
	employees EmployeeFinder
}

func NewAuthMiddleware(tokens *auth.TokenManager, accounts AccountFinder, employees EmployeeFinder) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:    tokens,
		accounts:  accounts,
		employees: employees,
	}
}

// Authenticate validates the bearer token and re-reads the subject from
// the database, so deactivations and deletions take effect immediately
// even while the token is still within its lifetime.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.ValidateAccessToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		var (
			identity string
			name     string
			active   bool
		)
		if claims.Role == auth.RoleEmployee {
			emp, err := m.employees.Get(r.Context(), claims.SubjectID)
			if err != nil {
				http.Error(w, "Account not found", http.StatusUnauthorized)
				return
			}
			identity, name, active = emp.EmployeeCode, emp.Name, emp.IsActive
		} else {
			acc, err := m.accounts.Get(r.Context(), claims.SubjectID)
			if err != nil {
				http.Error(w, "Account not found", http.StatusUnauthorized)
				return
			}
			// Token role must still match the stored role.
			if string(claims.Role) != acc.Role {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}
			identity, name, active = acc.Email, acc.Name, acc.IsActive
		}

		if !active {
			http.Error(w, "Account suspended. Please contact administrator.", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), SubjectIDKey, claims.SubjectID)
		ctx = context.WithValue(ctx, IdentityKey, identity)
		ctx = context.WithValue(ctx, RoleKey, claims.Role)
		ctx = context.WithValue(ctx, NameKey, name)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows only the listed roles. Must run after Authenticate.
func (m *AuthMiddleware) RequireRole(allowed ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
		})
	}
}

// RequireCapability allows any role whose capability set includes cap.
// Must run after Authenticate.
func (m *AuthMiddleware) RequireCapability(cap auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			if !role.Can(cap) {
				http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSubjectIDFromContext extracts the authenticated subject's ID.
func GetSubjectIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(SubjectIDKey).(int)
	return id, ok
}

// GetIdentityFromContext extracts the login identity (email or employee code).
func GetIdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(IdentityKey).(string)
	return identity, ok
}

// GetRoleFromContext extracts the authenticated subject's role.
func GetRoleFromContext(ctx context.Context) (auth.Role, bool) {
	role, ok := ctx.Value(RoleKey).(auth.Role)
	return role, ok
}

// GetNameFromContext extracts the subject's display name.
func GetNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(NameKey).(string)
	return name, ok
}
