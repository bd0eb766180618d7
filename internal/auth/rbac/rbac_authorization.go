package rbac

import (
	"log/slog"
	"net/http"

	"github.com/materialflow/mrs-management/internal/auth"
	"github.com/materialflow/mrs-management/internal/user"
)

// RBACAuthorization gates routes by role. Lifecycle operations re-check
// authorization against fresh state inside the engine; these middlewares only
// short-circuit plainly unauthorized callers.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

func (ra *RBACAuthorization) require(check func(role string) bool, label string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := auth.UserFromContext(r.Context())
			if !ok || u == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !check(u.Role) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
					"user_id", u.ID,
					"role", u.Role,
					"required", label)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.require(func(role string) bool { return role == user.RoleAdmin }, "admin")
}

func (ra *RBACAuthorization) RequireAdminOrManager() func(http.Handler) http.Handler {
	return ra.require(user.IsAdminOrManager, "admin or manager")
}

func (ra *RBACAuthorization) RequirePoster() func(http.Handler) http.Handler {
	return ra.require(user.CanPost, "posting role")
}

func (ra *RBACAuthorization) RequireReceiver() func(http.Handler) http.Handler {
	return ra.require(user.CanReceive, "receiving role")
}
