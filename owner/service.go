// Package owner provides owner resolution and cross-entity denormalization
// on top of the entity store.
//
// Each vertical's owner entity (customer, patient) is deduplicated by email:
// UpsertOwner resolves an existing owner or creates one. When a child or
// grandchild entity is created with a known owner, the owner id is written
// both inside the data map (under the vertical's key, e.g. "patientId") and
// as the shared top-level indexed attribute, so owner-scoped secondary-index
// queries work without a join. The two writes always happen together; an
// unknown owner leaves both absent.
package owner

import (
	"context"
	"errors"

	"github.com/jacentio/lattice/store"
)

// Config holds the per-vertical owner-resolution configuration.
type Config struct {
	// OwnerDomain is the logical entity name of the owner table
	// (e.g., "customer", "patient").
	// Default: "customer"
	OwnerDomain string

	// OwnerKey is the key carrying the owner id inside a dependent entity's
	// data map (e.g., "customerId", "patientId").
	// Default: "customerId"
	OwnerKey string

	// EmbedKey optionally names a nested object in child payloads that holds
	// the owner's identifying attributes ("customer", "patient"). When empty,
	// owner identity is read from flat "email"/"name" fields.
	EmbedKey string

	// Strict reserves a conditional email claim before creating a new owner,
	// trading an extra write for true upsert uniqueness. Off by default: the
	// plain check-before-create leaves a small window in which two concurrent
	// upserts of a new email both create an owner.
	Strict bool
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.OwnerDomain == "" {
		c.OwnerDomain = "customer"
	}
	if c.OwnerKey == "" {
		c.OwnerKey = "customerId"
	}
}

// Service resolves owners and denormalizes owner references onto dependent
// entities. It holds no mutable state and is safe for concurrent use.
type Service struct {
	store  *store.Store
	config Config
}

// New creates a new Service over the given store.
func New(st *store.Store, config Config) *Service {
	config.validate()
	return &Service{
		store:  st,
		config: config,
	}
}

// UpsertOwner resolves an owner by unique email, creating one when none
// exists. The first stored attributes win: a later upsert of the same email
// returns the original record untouched. Without Strict, two concurrent
// upserts of a brand-new email can both create a record.
func (s *Service) UpsertOwner(ctx context.Context, email string, attrs map[string]any) (*store.Entity, error) {
	existing, err := s.store.QueryByEmail(ctx, s.config.OwnerDomain, email)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	if s.config.Strict {
		err := s.store.ReserveEmail(ctx, s.config.OwnerDomain, email)
		if errors.Is(err, store.ErrEmailClaimed) {
			// Lost the claim to a concurrent upsert; its record should be
			// visible by now.
			existing, err := s.store.QueryByEmail(ctx, s.config.OwnerDomain, email)
			if err != nil {
				return nil, err
			}
			if len(existing) > 0 {
				return existing[0], nil
			}
			return nil, store.ErrEmailClaimed
		}
		if err != nil {
			return nil, err
		}
	}

	data := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if k == "email" {
			continue
		}
		data[k] = v
	}

	return s.store.Create(ctx, s.config.OwnerDomain, data, "ACTIVE", map[string]any{"email": email})
}

// ResolveChildOwner returns the owner id carried by a child entity,
// preferring the top-level indexed attribute over the nested data copy.
// A missing child or a child without an owner reference resolves to "" with
// no error; callers proceed without denormalization.
func (s *Service) ResolveChildOwner(ctx context.Context, childDomain, childID string) (string, error) {
	child, err := s.store.Get(ctx, childDomain, childID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if id, ok := child.Attrs[s.store.Config().OwnerAttr].(string); ok && id != "" {
		return id, nil
	}
	if id, ok := child.Data[s.config.OwnerKey].(string); ok && id != "" {
		return id, nil
	}
	return "", nil
}

// CreateChild creates a child entity, resolving its owner from the payload's
// embedded owner attributes. When the payload carries no email, the child is
// created as-is with no owner reference - never a validation failure here.
func (s *Service) CreateChild(ctx context.Context, domain string, data map[string]any, status string) (*store.Entity, error) {
	email, attrs := s.ownerIdentity(data)
	if email == "" {
		return s.store.Create(ctx, domain, data, status, nil)
	}

	ownerEnt, err := s.UpsertOwner(ctx, email, attrs)
	if err != nil {
		return nil, err
	}
	return s.createLinked(ctx, domain, data, status, ownerEnt.ID)
}

// CreateGrandchild creates an entity that references a child by id under
// parentRefKey in its data map. When the chain resolves, the owner id is
// denormalized exactly as for a child; a missing reference or an unlinked
// child is tolerated and the entity is created without an owner attribute.
func (s *Service) CreateGrandchild(ctx context.Context, domain string, data map[string]any, status, parentDomain, parentRefKey string) (*store.Entity, error) {
	parentID, _ := data[parentRefKey].(string)
	if parentID == "" {
		return s.store.Create(ctx, domain, data, status, nil)
	}

	ownerID, err := s.ResolveChildOwner(ctx, parentDomain, parentID)
	if err != nil {
		return nil, err
	}
	if ownerID == "" {
		return s.store.Create(ctx, domain, data, status, nil)
	}
	return s.createLinked(ctx, domain, data, status, ownerID)
}

// createLinked writes the owner id to both the nested data key and the
// top-level indexed attribute before creating the entity.
func (s *Service) createLinked(ctx context.Context, domain string, data map[string]any, status, ownerID string) (*store.Entity, error) {
	linked := make(map[string]any, len(data)+1)
	for k, v := range data {
		linked[k] = v
	}
	linked[s.config.OwnerKey] = ownerID

	attrs := map[string]any{s.store.Config().OwnerAttr: ownerID}
	return s.store.Create(ctx, domain, linked, status, attrs)
}

// ownerIdentity extracts the owner's email and identifying attributes from a
// child payload: the nested EmbedKey object when configured and present,
// otherwise the flat "email"/"name" fields.
func (s *Service) ownerIdentity(data map[string]any) (string, map[string]any) {
	if s.config.EmbedKey != "" {
		if embedded, ok := data[s.config.EmbedKey].(map[string]any); ok {
			if email, ok := embedded["email"].(string); ok && email != "" {
				attrs := make(map[string]any, len(embedded))
				for k, v := range embedded {
					attrs[k] = v
				}
				return email, attrs
			}
		}
	}

	email, _ := data["email"].(string)
	if email == "" {
		return "", nil
	}
	attrs := map[string]any{}
	if name, ok := data["name"]; ok {
		attrs["name"] = name
	}
	return email, attrs
}
