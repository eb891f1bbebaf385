// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - AccountStore: Connected account persistence
//   - MembershipStore: Account sharing roles
//   - TokenStore: OAuth credentials, encrypted at rest
//   - SettingStore: Account and module-level settings
//   - SnapshotStore: Daily metric snapshots
//   - SchedulerStore: Recurring task state
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.sitekit/data/sitekit.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
