package policy

import (
	"strings"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// routeRoles maps a path prefix to the roles allowed under it. The longest
// matching prefix wins.
var routeRoles = map[string][]domain.Role{
	"/dashboard":         allRoles(),
	"/expenses":          allRoles(),
	"/profile":           allRoles(),
	"/approvals":         {domain.RoleManager, domain.RoleAdmin},
	"/reports":           {domain.RoleFinance, domain.RoleManager, domain.RoleAdmin},
	"/admin":             {domain.RoleAdmin},
	"/api/expenses":      allRoles(),
	"/api/notifications": allRoles(),
	"/api/profile":       allRoles(),
	"/api/tokens":        allRoles(),
	"/api/approvals":     {domain.RoleManager, domain.RoleAdmin},
	"/api/reports":       {domain.RoleFinance, domain.RoleManager, domain.RoleAdmin},
	"/api/admin":         {domain.RoleAdmin},
}

func allRoles() []domain.Role {
	return append([]domain.Role(nil), domain.Roles...)
}

// CanAccessRoute reports whether the profile may open path. Routes without a
// matching prefix are allowed.
func CanAccessRoute(p *domain.UserProfile, path string) bool {
	roles, ok := matchRoute(path)
	if !ok {
		return true
	}
	return HasRole(p, roles...)
}

func matchRoute(path string) ([]domain.Role, bool) {
	var (
		best  string
		roles []domain.Role
	)
	for prefix, allowed := range routeRoles {
		if !hasPathPrefix(path, prefix) || len(prefix) <= len(best) {
			continue
		}
		best, roles = prefix, allowed
	}
	return roles, best != ""
}

// hasPathPrefix matches whole segments so /admin does not cover /administer.
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/' || path[len(prefix)] == '?'
}
