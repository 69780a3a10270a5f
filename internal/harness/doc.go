// Package harness runs impact propagation scenarios end to end.
//
// A scenario names a model document, the rule to violate and what the
// calculation must produce. Each run loads the model into a fresh in-memory
// SQLite ledger with sequential impact IDs, so the ledger trace of a scenario
// is byte-identical across runs and can be compared against a golden file.
//
// Assertions:
//   - notification_count: number of notifications
//   - impact_count: number of impacts written to the ledger
//   - impacts_at: number of impacts at one location
//   - notification: a notification reached a task along an exact path
//   - error: the calculation failed with a given code
package harness
