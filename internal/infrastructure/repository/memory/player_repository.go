// Package memory holds map-backed repositories. They serve tests and
// the memory storage driver; semantics mirror the postgres
// implementations.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{players: make(map[string]player.Player)}
}

func (r *PlayerRepository) GetByID(_ context.Context, id string) (*player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return nil, nil
	}
	out := p
	return &out, nil
}

func (r *PlayerRepository) ListByIDs(_ context.Context, ids []string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]player.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PlayerRepository) Upsert(_ context.Context, p *player.Player) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.players[p.ID] = *p
	r.mu.Unlock()
	return nil
}

func (r *PlayerRepository) UpdateStatus(_ context.Context, id string, status player.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return fmt.Errorf("memory: player %s not found", id)
	}
	p.Status = status
	r.players[id] = p
	return nil
}
