package telemetry

import (
	"sort"
	"sync"

	"ride-session/internal/domain/geo"
)

// Store is an in-memory telemetry sink keyed by entity id. Updates are
// last-write-wins: a stale or duplicate frame simply overwrites the stored
// value. There is no cross-entity invariant, so a single RWMutex over the
// two maps is all the coordination needed.
type Store struct {
	mu       sync.RWMutex
	vehicles map[string]geo.VehicleTelemetry
	signals  map[string]geo.SignalState
}

// NewStore creates an empty telemetry store.
func NewStore() *Store {
	return &Store{
		vehicles: make(map[string]geo.VehicleTelemetry),
		signals:  make(map[string]geo.SignalState),
	}
}

// UpsertVehicle stores the latest telemetry for a vehicle id.
func (store *Store) UpsertVehicle(telemetry geo.VehicleTelemetry) {
	if telemetry.ID == "" {
		return
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.vehicles[telemetry.ID] = telemetry
}

// UpsertSignal stores the latest state for a signal id.
func (store *Store) UpsertSignal(state geo.SignalState) {
	if state.ID == "" {
		return
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.signals[state.ID] = state
}

// Vehicle returns the stored telemetry for one vehicle id.
func (store *Store) Vehicle(id string) (geo.VehicleTelemetry, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	telemetry, ok := store.vehicles[id]
	return telemetry, ok
}

// Signal returns the stored state for one signal id.
func (store *Store) Signal(id string) (geo.SignalState, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	state, ok := store.signals[id]
	return state, ok
}

// Vehicles returns all known vehicles, ordered by id for stable output.
func (store *Store) Vehicles() []geo.VehicleTelemetry {
	store.mu.RLock()
	defer store.mu.RUnlock()

	out := make([]geo.VehicleTelemetry, 0, len(store.vehicles))
	for _, telemetry := range store.vehicles {
		out = append(out, telemetry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Signals returns all known signals, ordered by id for stable output.
func (store *Store) Signals() []geo.SignalState {
	store.mu.RLock()
	defer store.mu.RUnlock()

	out := make([]geo.SignalState, 0, len(store.signals))
	for _, state := range store.signals {
		out = append(out, state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
