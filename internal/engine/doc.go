// Package engine propagates SLO violations to the business-process tasks they
// put at risk.
//
// A violation is observed at an architecture interface (or at every interface a
// component provides). The engine walks outwards from there in two phases:
//
// Architecture Phase:
// A FIFO queue over the interface-consumer graph. Every dequeued interface
// becomes an Impact. If a saga step realizes the interface, the walk hands the
// step to the saga phase and does not fan out further from that interface.
// Otherwise every component consuming the interface is affected, and so is
// every interface that component provides.
//
// Saga Phase:
// A second FIFO queue over the steps collected above. Each step becomes an
// Impact, and the task the step links becomes the top-level Impact of a
// Notification.
//
// Every Impact is persisted through the ImpactLedger as soon as it is created;
// the ledger assigns its ID and the next Impact references it as its cause.
//
// GUARANTEES:
//
// Deterministic Order:
// Frontiers, consumers and provided interfaces are visited in declaration
// order. With a deterministic ledger the same input produces the same IDs.
//
// No Deduplication:
// There is no visited set. Diamonds produce one chain per path, and two calls
// with equal violations produce two independent sets of Notifications.
//
// Termination:
// Guaranteed only when the reachable consumer graph is acyclic. Run with
// WithMaxImpacts to bound a single calculation; model.AnalyzeCycles reports
// the cycles ahead of time.
package engine
