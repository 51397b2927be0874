package store

// Config holds configuration for the Store.
type Config struct {
	// EmailIndex is the GSI queried by email.
	// Default: "email-index"
	EmailIndex string

	// OwnerIndex is the GSI queried by owner id.
	// Default: "customerId-index"
	OwnerIndex string

	// OwnerAttr is the top-level attribute carrying the owner reference.
	// Every vertical shares this attribute name regardless of the key it
	// uses inside the data map ("customerId", "patientId", ...).
	// Default: "customerId"
	OwnerAttr string

	// ClaimTable is the table holding conditional email claims.
	// Default: "lattice_email_claims"
	ClaimTable string

	// DefaultStatus is applied when Create is called with an empty status.
	// Default: "ACTIVE"
	DefaultStatus string
}

// DefaultConfig returns sensible defaults for a single-vertical deployment.
func DefaultConfig() Config {
	return Config{
		EmailIndex:    "email-index",
		OwnerIndex:    "customerId-index",
		OwnerAttr:     "customerId",
		ClaimTable:    "lattice_email_claims",
		DefaultStatus: "ACTIVE",
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.EmailIndex == "" {
		c.EmailIndex = "email-index"
	}
	if c.OwnerIndex == "" {
		c.OwnerIndex = "customerId-index"
	}
	if c.OwnerAttr == "" {
		c.OwnerAttr = "customerId"
	}
	if c.ClaimTable == "" {
		c.ClaimTable = "lattice_email_claims"
	}
	if c.DefaultStatus == "" {
		c.DefaultStatus = "ACTIVE"
	}
}
