package telemetry

import (
	"testing"
	"time"

	"ride-session/internal/domain/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLastWriteWins(t *testing.T) {
	store := NewStore()

	store.UpsertVehicle(geo.VehicleTelemetry{ID: "C1", Pos: geo.Coordinate{X: 1, Y: 1}})
	store.UpsertVehicle(geo.VehicleTelemetry{ID: "C1", Pos: geo.Coordinate{X: 9, Y: 9}, UpdatedAt: time.Now()})

	v, ok := store.Vehicle("C1")
	require.True(t, ok)
	assert.Equal(t, geo.Coordinate{X: 9, Y: 9}, v.Pos)

	_, ok = store.Vehicle("C2")
	assert.False(t, ok)
}

func TestStoreIgnoresEmptyIDs(t *testing.T) {
	store := NewStore()
	store.UpsertVehicle(geo.VehicleTelemetry{})
	store.UpsertSignal(geo.SignalState{})

	assert.Empty(t, store.Vehicles())
	assert.Empty(t, store.Signals())
}

func TestStoreListsSortedByID(t *testing.T) {
	store := NewStore()
	store.UpsertVehicle(geo.VehicleTelemetry{ID: "C2"})
	store.UpsertVehicle(geo.VehicleTelemetry{ID: "C10"})
	store.UpsertVehicle(geo.VehicleTelemetry{ID: "C1"})

	var ids []string
	for _, v := range store.Vehicles() {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"C1", "C10", "C2"}, ids)

	store.UpsertSignal(geo.SignalState{ID: "S2", North: geo.SignalRed})
	store.UpsertSignal(geo.SignalState{ID: "S1", North: geo.SignalGreen})

	signals := store.Signals()
	require.Len(t, signals, 2)
	assert.Equal(t, "S1", signals[0].ID)
	assert.Equal(t, geo.SignalGreen, signals[0].North)
}
