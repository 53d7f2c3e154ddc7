package auth

import (
	"net/http"
	"strings"

	"github.com/mystore/product-catalog/internal"
	"github.com/mystore/product-catalog/internal/transport"
	"github.com/mystore/product-catalog/pkg/logger"
)

// Permission names gate individual catalog operations.
const (
	PermCreateProduct       = "create_product"
	PermReadProduct         = "read_product"
	PermUpdateProduct       = "update_product"
	PermDeleteProduct       = "delete_product"
	PermRestoreProduct      = "restore_product"
	PermViewDeletedProducts = "view_deleted_products"
	PermManageEmployees     = "manage_employees"
)

// defaultRolePermissions is the static role grant table. Employees can
// create and maintain products but never delete them; restore and the
// deleted-products view belong to managers and admins; employee
// administration is admin only.
var defaultRolePermissions = map[string][]string{
	RoleAdmin: {
		PermCreateProduct,
		PermReadProduct,
		PermUpdateProduct,
		PermDeleteProduct,
		PermRestoreProduct,
		PermViewDeletedProducts,
		PermManageEmployees,
	},
	RoleManager: {
		PermCreateProduct,
		PermReadProduct,
		PermUpdateProduct,
		PermDeleteProduct,
		PermRestoreProduct,
		PermViewDeletedProducts,
	},
	RoleEmployee: {
		PermCreateProduct,
		PermReadProduct,
		PermUpdateProduct,
	},
}

// Gate answers permission questions for authenticated accounts and exposes
// the route middlewares that enforce them. Unknown roles and unknown
// permissions always deny.
type Gate struct {
	rolePermissions map[string]map[string]bool
	base            *transport.BaseHandler
}

func NewGate() *Gate {
	return NewGateWithTable(defaultRolePermissions)
}

func NewGateWithTable(table map[string][]string) *Gate {
	perms := make(map[string]map[string]bool, len(table))
	for role, grants := range table {
		set := make(map[string]bool, len(grants))
		for _, p := range grants {
			set[p] = true
		}
		perms[strings.ToLower(role)] = set
	}
	return &Gate{
		rolePermissions: perms,
		base:            transport.NewBaseHandler(logger.L()),
	}
}

// Allows reports whether the role grants the permission. The role match is
// case insensitive; everything unknown denies.
func (g *Gate) Allows(role, permission string) error {
	if strings.TrimSpace(role) == "" {
		return internal.ErrRoleUndefined
	}
	grants, ok := g.rolePermissions[strings.ToLower(role)]
	if !ok {
		return internal.ErrRoleNotFound
	}
	if !grants[permission] {
		return internal.ErrPermissionDenied
	}
	return nil
}

// HasRole reports whether the account holds one of the given roles.
func (g *Gate) HasRole(role string, allowed ...string) error {
	if strings.TrimSpace(role) == "" {
		return internal.ErrRoleUndefined
	}
	if _, ok := g.rolePermissions[strings.ToLower(role)]; !ok {
		return internal.ErrRoleNotFound
	}
	for _, a := range allowed {
		if strings.EqualFold(role, a) {
			return nil
		}
	}
	return internal.ErrAccessDenied
}

// RequirePermission guards a route with a single permission check. It must
// run behind AuthMiddleware so the account is already in context.
func (g *Gate) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				g.base.WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if err := g.Allows(user.Role, permission); err != nil {
				g.base.Logger.Warn("permission denied",
					"user_id", user.ID,
					"role", user.Role,
					"permission", permission)
				g.base.WriteServiceError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole guards a route with a role allow-list.
func (g *Gate) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				g.base.WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if err := g.HasRole(user.Role, roles...); err != nil {
				g.base.Logger.Warn("role check failed",
					"user_id", user.ID,
					"role", user.Role)
				g.base.WriteServiceError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
