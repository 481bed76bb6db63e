// Package content defines the school site's editable content document.
//
// # Overview
//
// The site renders every section (hero, about, curriculum streams, staff
// directory, sponsors) from one Document. This package owns its shape, the
// default snapshot and the rules for upgrading older persisted payloads.
//
// # Defaults
//
// Default returns a fully populated snapshot. It is the value used when
// nothing is stored and the baseline for back-compat merging.
//
// # Migration
//
// Migrate turns a raw persisted payload into a complete Document in one pass:
//
//  1. Subjects stored as bare strings become {name, passMark: "50%"}
//  2. Default staff whose name (case-insensitive) is missing are appended
//  3. Every absent top-level field is filled from the default snapshot
//
// New back-compat rules are added as one more pipeline stage.
//
// # Patches
//
// Partial describes an edit. Apply replaces whole top-level fields, so
// setting Team replaces the full staff list rather than merging entries.
//
// # Images
//
// Image fields hold either an absolute http(s) URL or a base64 data URL.
// FilterImages removes anything else before rendering.
package content
