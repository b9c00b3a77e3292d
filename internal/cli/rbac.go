package cli

import (
	"github.com/99minutos/library-catalog/internal/app"
	"github.com/99minutos/library-catalog/internal/core/domain"
)

// requireRole enforces role-based access for commands that change the catalog
// structure. Anonymous callers get ErrUnauthenticated.
func requireRole(a *app.App, allowedRoles ...domain.Role) error {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	user, ok := a.Session.Current()
	if !ok {
		return domain.ErrUnauthenticated
	}
	if _, ok := allowed[user.Role]; !ok {
		return errForbidden
	}
	return nil
}
