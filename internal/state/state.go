// Package state stores the pricing configuration and UI state as one JSON blob.
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Simplici0/fleetprice/internal/store"
)

// Key is the store key holding the blob.
const Key = "app_state"

// State is the persisted document. Both halves are opaque JSON; a half that was
// never written reads as null.
type State struct {
	Config json.RawMessage `json:"config"`
	UI     json.RawMessage `json:"ui"`
}

// Service reads and writes State through a Store. Half updates from one
// process are serialized; writers in other processes follow last-write-wins.
type Service struct {
	store store.Store
	mu    sync.Mutex
}

// NewService returns a Service over s.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Get returns the stored state, or an empty state when nothing was saved yet.
func (s *Service) Get(ctx context.Context) (State, error) {
	st, _, err := s.Load(ctx)
	return st, err
}

// Load returns the stored state and whether it exists, with a single store
// read. Missing state reads as empty.
func (s *Service) Load(ctx context.Context) (State, bool, error) {
	raw, err := s.store.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return State{Config: null(), UI: null()}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("load state: %w", err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, true, fmt.Errorf("decode state: %w", err)
	}
	st.Config = orNull(st.Config)
	st.UI = orNull(st.UI)
	return st, true, nil
}

// Put replaces the whole state.
func (s *Service) Put(ctx context.Context, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, st)
}

func (s *Service) put(ctx context.Context, st State) error {
	st.Config = orNull(st.Config)
	st.UI = orNull(st.UI)

	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.store.Set(ctx, Key, raw); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Exists reports whether any state has been saved.
func (s *Service) Exists(ctx context.Context) (bool, error) {
	_, ok, err := s.Load(ctx)
	if err != nil && !ok {
		return false, err
	}
	return ok, nil
}

// GetConfig returns the config half.
func (s *Service) GetConfig(ctx context.Context) (json.RawMessage, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return st.Config, nil
}

// PutConfig replaces the config half and keeps the UI half.
func (s *Service) PutConfig(ctx context.Context, cfg json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Get(ctx)
	if err != nil {
		return err
	}
	st.Config = cfg
	return s.put(ctx, st)
}

// GetUI returns the UI half.
func (s *Service) GetUI(ctx context.Context) (json.RawMessage, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return st.UI, nil
}

// PutUI replaces the UI half and keeps the config half.
func (s *Service) PutUI(ctx context.Context, ui json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Get(ctx)
	if err != nil {
		return err
	}
	st.UI = ui
	return s.put(ctx, st)
}

func null() json.RawMessage {
	return json.RawMessage("null")
}

func orNull(v json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(v)) == 0 {
		return null()
	}
	return v
}

// IsNull reports whether v is missing or JSON null.
func IsNull(v json.RawMessage) bool {
	trimmed := bytes.TrimSpace(v)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
