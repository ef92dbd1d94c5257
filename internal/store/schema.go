package store

import _ "embed"

// Schema is the DDL for all promogate tables. Exposed so the test support
// harness can bootstrap ephemeral databases with the exact production schema.
//
//go:embed schema.sql
var Schema string
