// Package store persists systems, impacts and notifications.
//
// Two implementations share one method set:
//   - Store: SQLite, durable, used by the CLI and the server
//   - Memory: mutex-guarded maps, used by tests and dry runs
//
// Both satisfy engine.ImpactLedger and engine.SystemRepository.
//
// # Impact Ledger
//
// SaveImpact assigns the impact's ID from an IDGenerator and records the
// cause by ID. Impacts are append-only: a cause must be saved before the
// impacts it causes, and nothing is ever updated or deleted. ReadChain walks
// the cause links back to the root.
//
// # Ordering
//
//   - All ordering uses seq INTEGER (logical counter), NEVER timestamps
//   - List queries ORDER BY seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
