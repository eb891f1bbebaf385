// Package domain defines the core business entities for Site Kit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Account: A connected Google identity for a local user
//   - Membership: A user's role on a shared account
//   - TokenRecord: Stored OAuth credentials for one account
//   - Setting: An account-scoped (or module-level) key/value setting
//   - Snapshot: One persisted fetch result per (account, connector, period, day)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
