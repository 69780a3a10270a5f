// Package loader reads system model documents and resolves them into
// model.System values.
//
// Documents come in two encodings:
//   - YAML (.yaml, .yml), decoded with gopkg.in/yaml.v3, unknown fields rejected
//   - CUE (.cue), unified with an embedded #System schema before decoding
//
// Both decode into Document, which references elements by ID. A Session
// resolves those references for one import and reports duplicates and
// dangling references.
package loader
