// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - AccountStore / MembershipStore: account and sharing persistence
//   - TokenStore: encrypted OAuth credential persistence
//   - SettingStore: account-scoped key/value settings
//   - SnapshotStore: daily snapshot persistence
//   - OAuthClient: Google OAuth and data-API gateway
//   - Connector: per-data-source fetcher (GA4, Search Console)
//   - Cache: read-through TTL cache for connector results
//   - SyncExecutor: execution strategy for per-account sync units
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
//   - SchedulerStore: recurring task state. Without it, only on-demand
//     sync via the CLI is available.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
