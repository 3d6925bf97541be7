package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamMessageKind(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		kind MessageKind
	}{
		{"simulation handshake", `{"testing":"true"}`, KindHandshake},
		{"real ledger handshake", `{"testing":"false","mrmAddress":"0xmrm"}`, KindHandshake},
		{"vehicle", `{"type":"Car","id":"C1","x":"120","y":"431","orientation":"90"}`, KindVehicleTelemetry},
		{"signal", `{"type":"Stoplight","id":"S1","north":"0","east":"2","south":"0","west":"2"}`, KindSignalTelemetry},
		{"ride status", `{"type":"RideStatus","address":"0xrider","id":"C1","state":"To Pick Up"}`, KindRideStatus},
		{"unknown type", `{"type":"Drone","id":"D1"}`, KindUnknown},
		{"empty frame", `{}`, KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var msg StreamMessage
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &msg))
			assert.Equal(t, tc.kind, msg.Kind())
		})
	}
}

func TestSimulationOnly(t *testing.T) {
	assert.True(t, StreamMessage{Testing: "true"}.SimulationOnly())
	assert.True(t, StreamMessage{Testing: " TRUE "}.SimulationOnly())
	assert.False(t, StreamMessage{Testing: "false", MrmAddress: "0xmrm"}.SimulationOnly())
	assert.False(t, StreamMessage{}.SimulationOnly())
}

func TestRouteForState(t *testing.T) {
	assert.Equal(t, "ride.status.to_pick_up", RouteForState("To Pick Up"))
	assert.Equal(t, "ride.status.accepted", RouteForState("Accepted"))
	assert.Equal(t, "ride.status.unknown", RouteForState("  "))
}
