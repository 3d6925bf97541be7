package geo

import (
	"errors"
	"strings"
)

// EntityType indicates the owner of a telemetry update (vehicle or traffic signal).
type EntityType string

const (
	EntityTypeVehicle EntityType = "vehicle"
	EntityTypeSignal  EntityType = "signal"
)

var ErrInvalidEntityType = errors.New("invalid entity type")

// ParseEntityType normalizes (lowercases+trims) and validates an entity type string.
func ParseEntityType(input string) (EntityType, error) {
	entityType := EntityType(strings.ToLower(strings.TrimSpace(input)))
	if entityType.Valid() {
		return entityType, nil
	}
	return "", ErrInvalidEntityType
}

// Valid reports whether entityType is one of the allowed entity type constants.
func (entityType EntityType) Valid() bool {
	switch entityType {
	case EntityTypeVehicle, EntityTypeSignal:
		return true
	default:
		return false
	}
}

// String returns the string representation of the EntityType.
func (entityType EntityType) String() string {
	return string(entityType)
}

func (entityType EntityType) IsVehicle() bool { return entityType == EntityTypeVehicle }
func (entityType EntityType) IsSignal() bool  { return entityType == EntityTypeSignal }
