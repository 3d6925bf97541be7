package contracts

import "strings"

// Wire values of the StreamMessage type tag.
const (
	TypeCar        = "Car"
	TypeStoplight  = "Stoplight"
	TypeRideStatus = "RideStatus"
)

// MessageKind classifies an inbound stream frame for dispatch.
type MessageKind int

const (
	KindUnknown MessageKind = iota
	KindHandshake
	KindVehicleTelemetry
	KindSignalTelemetry
	KindRideStatus
)

// String returns a short name for the MessageKind, for logs.
func (kind MessageKind) String() string {
	switch kind {
	case KindHandshake:
		return "handshake"
	case KindVehicleTelemetry:
		return "vehicle_telemetry"
	case KindSignalTelemetry:
		return "signal_telemetry"
	case KindRideStatus:
		return "ride_status"
	default:
		return "unknown"
	}
}

// StreamMessage is the single message envelope of the push stream. The
// simulator sends one flat JSON object per frame; which fields are populated
// depends on the frame kind. Numeric values arrive string-encoded, exactly
// as the simulator emits them.
type StreamMessage struct {
	// Session-init handshake, sent exactly once at connection start.
	Testing    string `json:"testing,omitempty"`    // "true" for simulation-only mode
	MrmAddress string `json:"mrmAddress,omitempty"` // ledger contract address otherwise

	// Discriminator and entity id for every post-handshake frame.
	Type string `json:"type,omitempty"`
	ID   string `json:"id,omitempty"`

	// Vehicle telemetry.
	X           string `json:"x,omitempty"`
	Y           string `json:"y,omitempty"`
	Orientation string `json:"orientation,omitempty"`

	// Signal telemetry, one color digit per approach direction.
	North string `json:"north,omitempty"`
	East  string `json:"east,omitempty"`
	South string `json:"south,omitempty"`
	West  string `json:"west,omitempty"`

	// Ride status.
	Address string `json:"address,omitempty"` // subject rider address
	State   string `json:"state,omitempty"`   // status label, e.g. "To Pick Up"
}

// Kind classifies the frame. A frame with no type tag but a testing flag is
// the handshake; anything else unrecognized is KindUnknown and the
// dispatcher drops it.
func (msg StreamMessage) Kind() MessageKind {
	switch msg.Type {
	case TypeCar:
		return KindVehicleTelemetry
	case TypeStoplight:
		return KindSignalTelemetry
	case TypeRideStatus:
		return KindRideStatus
	case "":
		if msg.Testing != "" {
			return KindHandshake
		}
		return KindUnknown
	default:
		return KindUnknown
	}
}

// SimulationOnly reports whether a handshake frame selects simulation-only
// mode (no external ledger).
func (msg StreamMessage) SimulationOnly() bool {
	return strings.EqualFold(strings.TrimSpace(msg.Testing), "true")
}
