package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/swapintent"
)

type SwapIntentRepository struct {
	mu      sync.RWMutex
	intents map[string]swapintent.Intent
}

func NewSwapIntentRepository() *SwapIntentRepository {
	return &SwapIntentRepository{intents: make(map[string]swapintent.Intent)}
}

func (r *SwapIntentRepository) GetByID(_ context.Context, id string) (*swapintent.Intent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	intent, ok := r.intents[id]
	if !ok {
		return nil, nil
	}
	out := intent
	return &out, nil
}

func (r *SwapIntentRepository) ListByTeamPeriod(_ context.Context, teamID string, periodID int) ([]swapintent.Intent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []swapintent.Intent
	for _, intent := range r.intents {
		if intent.TeamID == teamID && intent.PeriodID == periodID {
			out = append(out, intent)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *SwapIntentRepository) Create(_ context.Context, intent *swapintent.Intent) error {
	if err := intent.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.intents[intent.ID]; exists {
		return fmt.Errorf("memory: swap intent %s already exists", intent.ID)
	}
	r.intents[intent.ID] = *intent
	return nil
}

func (r *SwapIntentRepository) Update(_ context.Context, intent *swapintent.Intent) error {
	if err := intent.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.intents[intent.ID]; !exists {
		return fmt.Errorf("memory: swap intent %s not found", intent.ID)
	}
	r.intents[intent.ID] = *intent
	return nil
}
