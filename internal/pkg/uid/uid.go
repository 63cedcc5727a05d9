// Package uid generates identifiers: UUIDs for one-time link keys, object
// ids for auth sessions and snowflake numbers for event records.
package uid

// StringID produces opaque string identifiers.
type StringID interface {
	Generate() string
}

// NumberID produces time-ordered numeric identifiers.
type NumberID interface {
	Generate() int64
}
