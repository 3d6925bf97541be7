package geo

import (
	"errors"
	"time"
)

// VehicleTelemetry is the rendering state of one simulated vehicle. Updates
// are last-write-wins per vehicle id; stale or duplicate frames simply
// overwrite the stored value.
type VehicleTelemetry struct {
	ID             string
	Pos            Coordinate
	HeadingDegrees float64
	UpdatedAt      time.Time
}

// SignalState is the rendering state of one intersection's traffic signal,
// one color per approach direction.
type SignalState struct {
	ID        string
	North     SignalColor
	East      SignalColor
	South     SignalColor
	West      SignalColor
	UpdatedAt time.Time
}

// SignalColor is a signal head color. The simulator encodes colors as the
// digits "0" (red), "1" (orange) and "2" (green) on the wire.
type SignalColor string

const (
	SignalRed    SignalColor = "RED"
	SignalOrange SignalColor = "ORANGE"
	SignalGreen  SignalColor = "GREEN"
)

var ErrInvalidSignalColor = errors.New("invalid signal color")

// ParseSignalColor decodes the simulator's wire digit into a color.
func ParseSignalColor(wire string) (SignalColor, error) {
	switch wire {
	case "0":
		return SignalRed, nil
	case "1":
		return SignalOrange, nil
	case "2":
		return SignalGreen, nil
	default:
		return "", ErrInvalidSignalColor
	}
}

// Valid reports whether color is one of the signal color constants.
func (color SignalColor) Valid() bool {
	switch color {
	case SignalRed, SignalOrange, SignalGreen:
		return true
	default:
		return false
	}
}

// String returns the string representation of the SignalColor.
func (color SignalColor) String() string {
	return string(color)
}
