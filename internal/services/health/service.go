package health

import (
	"context"
	"database/sql"
	"time"
)

// Service encapsulates health-related checks.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service. db may be nil when the app
// runs on in-memory stores.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status returns a simple health payload, including database reachability
// when a database is configured.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{"ok": true, "storage": "memory"}
	if s.DB == nil {
		return out
	}
	out["storage"] = "postgres"
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		out["ok"] = false
		out["database_error"] = err.Error()
	}
	return out
}
