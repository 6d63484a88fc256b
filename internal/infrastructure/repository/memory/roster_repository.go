package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/roster"
)

type RosterRepository struct {
	mu    sync.RWMutex
	slots map[string]map[string]roster.Slot
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{slots: make(map[string]map[string]roster.Slot)}
}

func rosterKey(teamID string, periodID int) string {
	return teamID + ":" + strconv.Itoa(periodID)
}

func (r *RosterRepository) ListByTeamPeriod(_ context.Context, teamID string, periodID int) ([]roster.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byPlayer := r.slots[rosterKey(teamID, periodID)]
	out := make([]roster.Slot, 0, len(byPlayer))
	for _, slot := range byPlayer {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *RosterRepository) Upsert(_ context.Context, slot *roster.Slot) error {
	if err := slot.Validate(); err != nil {
		return err
	}
	key := rosterKey(slot.TeamID, slot.PeriodID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots[key] == nil {
		r.slots[key] = make(map[string]roster.Slot)
	}
	r.slots[key][slot.PlayerID] = *slot
	return nil
}

func (r *RosterRepository) UpdateRole(_ context.Context, teamID string, periodID int, playerID string, role roster.Role) error {
	key := rosterKey(teamID, periodID)
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[key][playerID]
	if !ok {
		return fmt.Errorf("memory: no slot for player %s in team %s period %d", playerID, teamID, periodID)
	}
	slot.Role = role
	slot.UpdatedAt = time.Now().UTC()
	r.slots[key][playerID] = slot
	return nil
}
