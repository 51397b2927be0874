package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// Mapping binds one vertical's logical entity names to physical table names.
// The mapping is read once from deployment configuration at process start and
// is immutable afterwards.
type Mapping struct {
	// Vertical identifies the business line the mapping belongs to
	// (e.g., "insurance", "healthcare").
	Vertical string `json:"vertical"`

	// Tables maps logical entity names to physical table names.
	Tables map[string]string `json:"tables"`
}

// LoadMapping reads a Mapping from a JSON configuration file.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, fmt.Errorf("read mapping config: %w", err)
	}

	var m Mapping
	if err := json.Unmarshal(data, &m); err != nil {
		return Mapping{}, fmt.Errorf("parse mapping config: %w", err)
	}
	return m, nil
}

// ValidateMappings asserts that no two verticals resolve to the same physical
// table. Call it at startup when one process is configured with more than one
// vertical; a collision here would otherwise leak data silently across
// verticals at runtime.
func ValidateMappings(mappings ...Mapping) error {
	owners := make(map[string]string) // physical table -> vertical
	for _, m := range mappings {
		for _, table := range m.Tables {
			if prev, ok := owners[table]; ok && prev != m.Vertical {
				return fmt.Errorf("lattice: table %q configured for both vertical %q and %q", table, prev, m.Vertical)
			}
			owners[table] = m.Vertical
		}
	}
	return nil
}

// Resolver translates logical entity names to physical tables for one
// vertical. It is a pure lookup over an immutable mapping and is safe for
// concurrent use.
type Resolver struct {
	vertical string
	tables   map[string]string
	physical map[string]struct{}
}

// NewResolver creates a Resolver from a vertical's mapping.
func NewResolver(m Mapping) *Resolver {
	r := &Resolver{
		vertical: m.Vertical,
		tables:   make(map[string]string, len(m.Tables)),
		physical: make(map[string]struct{}, len(m.Tables)),
	}
	for logical, table := range m.Tables {
		r.tables[logical] = table
		r.physical[table] = struct{}{}
	}
	return r
}

// Vertical returns the vertical the resolver is bound to.
func (r *Resolver) Vertical() string {
	return r.vertical
}

// Resolve returns the physical table for a logical entity name. When the name
// is not mapped but matches a physical table name directly, it resolves to
// itself (identity fallback). Otherwise Resolve fails with ErrUnknownDomain.
func (r *Resolver) Resolve(logical string) (string, error) {
	if table, ok := r.tables[logical]; ok {
		return table, nil
	}
	if _, ok := r.physical[logical]; ok {
		return logical, nil
	}
	return "", fmt.Errorf("%w: %q (vertical %q)", ErrUnknownDomain, logical, r.vertical)
}
