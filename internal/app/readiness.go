package app

import (
	"context"
	"time"

	"github.com/99minutos/library-catalog/internal/infrastructure/persistence"
)

// DependencyStatus is the health of one dependency.
type DependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Readiness summarises whether the catalog can serve requests.
type Readiness struct {
	Status       string                      `json:"status"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

// Ready reports whether every dependency is ok.
func (r Readiness) Ready() bool { return r.Status == "ok" }

// Readiness pings the storage backend and checks that the persisted catalog
// and accounts still decode.
func (a *App) Readiness(ctx context.Context) Readiness {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	deps := make(map[string]DependencyStatus)
	healthy := true
	check := func(name string, err error) {
		if err != nil {
			deps[name] = DependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			return
		}
		deps[name] = DependencyStatus{Status: "ok"}
	}

	// --- Storage ping ---
	check("storage", a.store.Ping(ctx))

	// --- Persisted catalog ---
	_, _, err := persistence.NewBookRepository(a.store).Load(ctx)
	check("catalog", err)

	// --- Persisted accounts ---
	_, err = persistence.NewAccountRepository(a.store).Load(ctx)
	check("accounts", err)

	status := "ok"
	if !healthy {
		status = "degraded"
	}
	return Readiness{Status: status, Dependencies: deps}
}
