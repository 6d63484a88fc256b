package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/enrichment"
)

type EnrichmentRepository struct {
	mu      sync.RWMutex
	records map[string]enrichment.Record
}

func NewEnrichmentRepository() *EnrichmentRepository {
	return &EnrichmentRepository{records: make(map[string]enrichment.Record)}
}

func recordKey(playerID string, periodID int) string {
	return playerID + ":" + strconv.Itoa(periodID)
}

func (r *EnrichmentRepository) GetByPlayerPeriod(_ context.Context, playerID string, periodID int) (*enrichment.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[recordKey(playerID, periodID)]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (r *EnrichmentRepository) ListByPeriod(_ context.Context, periodID int, playerIDs []string) ([]enrichment.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]enrichment.Record, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		if rec, ok := r.records[recordKey(playerID, periodID)]; ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *EnrichmentRepository) Upsert(_ context.Context, rec *enrichment.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.records[recordKey(rec.PlayerID, rec.PeriodID)] = *rec
	r.mu.Unlock()
	return nil
}
