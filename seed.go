package hl7

import _ "embed"

// Bundled reference data. segments.jsonc carries the static dictionary
// for the well-known segment types; configurability.jsonc carries the
// default operator annotations. Both are JSONC so the reference data can
// stay commented.

//go:embed data/segments.jsonc
var segmentSeed []byte

//go:embed data/configurability.jsonc
var configurabilitySeed []byte
