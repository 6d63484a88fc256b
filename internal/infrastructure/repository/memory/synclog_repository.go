package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/synclog"
)

type SyncLogRepository struct {
	mu      sync.RWMutex
	entries []synclog.Entry
}

func NewSyncLogRepository() *SyncLogRepository {
	return &SyncLogRepository{}
}

func (r *SyncLogRepository) Create(_ context.Context, entry *synclog.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.entries = append(r.entries, *entry)
	r.mu.Unlock()
	return nil
}

// ListByTeam returns entries newest first.
func (r *SyncLogRepository) ListByTeam(_ context.Context, teamID string, limit int) ([]synclog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []synclog.Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].TeamID != teamID {
			continue
		}
		out = append(out, r.entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
