package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Simplici0/fleetprice/internal/pricing"
	"github.com/Simplici0/fleetprice/internal/state"
)

// Config contains the values required by startup seed.
type Config struct {
	// Defaults is stored as the pricing config when none exists.
	Defaults pricing.Config
	// UI is the initial UI document. Nil stores null.
	UI json.RawMessage
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, svc *state.Service, cfg Config) (Stats, error) {
	stats := Stats{}

	st, exists, err := svc.Load(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("read state for seed: %w", err)
	}
	if exists && !state.IsNull(st.Config) {
		return stats, nil
	}

	if err := cfg.Defaults.Validate(); err != nil {
		return Stats{}, fmt.Errorf("validate seed pricing config: %w", err)
	}
	raw, err := json.Marshal(cfg.Defaults)
	if err != nil {
		return Stats{}, fmt.Errorf("encode seed pricing config: %w", err)
	}

	st.Config = raw
	if !exists && cfg.UI != nil {
		st.UI = cfg.UI
	}
	if err := svc.Put(ctx, st); err != nil {
		return Stats{}, fmt.Errorf("store seed state: %w", err)
	}

	if exists {
		stats.Updates++
	} else {
		stats.Inserts++
	}
	return stats, nil
}
