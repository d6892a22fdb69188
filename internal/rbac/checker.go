package rbac

import (
	"context"
	"strings"
)

// Checker decides whether a role holds a permission under the portal
// policy. Permissions are "<area>:<action>" strings; a role entry of
// "*" grants everything, and an entry ending in "*" grants every
// permission under that prefix (e.g. "progress:*").
type Checker struct {
	perms map[string][]string
}

func NewChecker(perms map[string][]string) *Checker {
	if perms == nil {
		perms = RolePermissions
	}
	return &Checker{perms: perms}
}

func (c *Checker) Has(role, perm string) bool {
	for _, p := range c.perms[role] {
		if p == "*" || p == perm {
			return true
		}
		if strings.HasSuffix(p, "*") && strings.HasPrefix(perm, strings.TrimSuffix(p, "*")) {
			return true
		}
	}
	return false
}

// ---- role in context ----

type ctxKey struct{}

var ctxKeyRole = ctxKey{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKeyRole, role)
}

func RoleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyRole).(string); ok {
		return s
	}
	return ""
}
