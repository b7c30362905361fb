package models

import (
	"github.com/google/uuid"
)

// EntityID identifies a node of the scene graph.
// The zero value never refers to a live entity.
type EntityID uuid.UUID

// ComponentID identifies a component instance in the scene component table.
type ComponentID uuid.UUID

// NewEntityID returns a fresh random (v4) entity identifier.
func NewEntityID() EntityID {
	return EntityID(uuid.New())
}

// NewComponentID returns a fresh random (v4) component identifier.
func NewComponentID() ComponentID {
	return ComponentID(uuid.New())
}

func (id EntityID) String() string { return uuid.UUID(id).String() }

func (id EntityID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

func (id ComponentID) String() string { return uuid.UUID(id).String() }

func (id ComponentID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ParseEntityID parses the canonical textual form produced by EntityID.String.
func ParseEntityID(s string) (EntityID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return EntityID{}, err
	}
	return EntityID(u), nil
}

// ParseComponentID parses the canonical textual form produced by ComponentID.String.
func ParseComponentID(s string) (ComponentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ComponentID{}, err
	}
	return ComponentID(u), nil
}

// MarshalText lets ids be used as JSON/YAML map keys and string fields.
func (id EntityID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *EntityID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

func (id ComponentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ComponentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
