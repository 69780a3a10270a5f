// Package issue turns notifications into issues of an external tracker.
//
// A Provisioner renders the issue title and body for a notification, reuses
// an open issue that already reports the same impact, and links the issue to
// the one the SLO manager opened for the original violation. The tracker is a
// port; MemoryTracker is the in-process implementation used when no tracker
// is configured.
package issue
