package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a point on the simulator map, in map pixels. Ride start and
// end points travel over the wire in the "x,y" form the ledger stores.
type Coordinate struct {
	X float64
	Y float64
}

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ParseCoordinate parses the "x,y" wire form.
func ParseCoordinate(in string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(in), ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("%q: %w", in, ErrInvalidCoordinate)
	}

	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%q: %w", in, ErrInvalidCoordinate)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%q: %w", in, ErrInvalidCoordinate)
	}

	return Coordinate{X: x, Y: y}, nil
}

// String returns the "x,y" wire form. Whole values render without a
// fractional part, matching what the map click capture produces.
func (coordinate Coordinate) String() string {
	return strconv.FormatFloat(coordinate.X, 'f', -1, 64) + "," +
		strconv.FormatFloat(coordinate.Y, 'f', -1, 64)
}
