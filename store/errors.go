package store

import "errors"

var (
	// ErrUnknownDomain is returned when a logical entity name resolves to no
	// physical table in the active vertical's mapping.
	ErrUnknownDomain = errors.New("lattice: unknown domain")

	// ErrNotFound is returned when an entity doesn't exist.
	ErrNotFound = errors.New("lattice: entity not found")

	// ErrEmailClaimed is returned when a conditional email claim fails because
	// another writer already holds the claim.
	ErrEmailClaimed = errors.New("lattice: email already claimed")
)
