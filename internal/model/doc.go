// Package model defines the architecture, process and impact types that the
// propagation engine works on.
//
// A System bundles three views of one product:
//   - Architecture: components and the interfaces they provide and consume
//   - Process: the business-process tasks
//   - Sagas: ordered steps, each binding one interface to one task
//
// SLO rules are attached to the system and locate a violation either at a
// single interface or at a whole component.
//
// # Identity
//
// Every model element is identified by a stable string ID. All lookups and all
// equality checks between elements (in particular "does this saga step realize
// this interface") compare IDs, never pointers. A System decoded twice from the
// same document therefore behaves identically.
//
// # Locations
//
// An Impact sits at a Location, a tagged union over interface, saga step and
// task. Code that needs to behave differently per kind switches on
// Location.Kind; the switches are exhaustive and return an error for an
// unknown kind.
//
// # Canonical encoding
//
// Notification fingerprints are computed from canonical JSON (sorted keys by
// UTF-16 code units, NFC-normalized strings, no HTML escaping) hashed with
// SHA-256 and a domain prefix. See canonical.go and hash.go.
package model
