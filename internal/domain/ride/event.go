package ride

import (
	"errors"
	"strings"
)

// StatusLabel is a ride-status transition label as broadcast on the push
// stream. The values are wire literals and must match the simulator exactly.
type StatusLabel string

const (
	LabelAccepted  StatusLabel = "Accepted"
	LabelToPickUp  StatusLabel = "To Pick Up"
	LabelAtPickUp  StatusLabel = "At Pick Up"
	LabelAtDropOff StatusLabel = "At Drop Off"
)

var ErrInvalidStatusLabel = errors.New("invalid ride status label")

// ParseStatusLabel validates a status label string. Labels are matched
// case-insensitively but returned in their canonical wire form.
func ParseStatusLabel(in string) (StatusLabel, error) {
	trimmed := strings.TrimSpace(in)
	for _, label := range []StatusLabel{LabelAccepted, LabelToPickUp, LabelAtPickUp, LabelAtDropOff} {
		if strings.EqualFold(trimmed, string(label)) {
			return label, nil
		}
	}
	return "", ErrInvalidStatusLabel
}

// String returns the string representation of the StatusLabel.
func (label StatusLabel) String() string {
	return string(label)
}

// StatusEvent is a ride-status message after envelope decoding, addressed to
// the ride owner identified by Subject.
type StatusEvent struct {
	Subject   string // rider address the event is about
	VehicleID string // simulator id of the assigned vehicle
	Label     StatusLabel
}
