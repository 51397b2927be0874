// Package store provides a generic DynamoDB entity store shared by multiple
// business verticals.
//
// Lattice serves several independently branded verticals (insurance, retail,
// healthcare, fintech) from one codebase by redirecting logical entity names
// onto a per-deployment set of physical tables. Every record has the same
// shape: an id, epoch-second timestamps, a status, a free-form data map, and
// zero or more scalar top-level attributes promoted out of data so that
// secondary-index queries can find them.
//
// # Domain Resolution
//
// Callers address tables by logical name ("account", "appointment"). A
// [Resolver], built from one vertical's [Mapping] at process start, translates
// the logical name to a physical table. Resolution fails closed: a name that
// is neither mapped nor a known physical table yields [ErrUnknownDomain].
// [ValidateMappings] asserts at startup that no two verticals in the same
// process share a physical table.
//
// # Numeric Normalization
//
// Every write path passes the data map through [Normalize], which converts
// floating-point values to [Decimal] (stored as a DynamoDB number in its
// shortest exact fixed-point form). Reads decode numbers back to int64 when
// integral and [Decimal] otherwise, so stored values have stable numeric
// semantics regardless of the caller's number types.
//
// # Consistency Model
//
// The store performs no transactions, no retries, and no locking. Uniqueness
// of owner emails is best-effort (check-before-create, see the owner
// package); [Store.ReserveEmail] offers an opt-in conditional claim for
// callers that need the stronger guarantee. List and scan read a single page
// by default; the Page variants expose the continuation token explicitly.
//
// # Errors
//
//   - [ErrUnknownDomain] - logical name has no resolvable physical table
//   - [ErrNotFound] - entity doesn't exist
//   - [ErrEmailClaimed] - conditional email claim lost to an earlier writer
//
// Underlying store failures propagate unchanged; nothing is logged or
// recovered here.
package store
