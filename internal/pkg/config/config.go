package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values and scales them to a duration unit.
type TimeConfig interface {
	// GetSecond returns the value of key as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute returns the value of key as a number of minutes.
	GetMinute(key string) time.Duration
	// GetHour returns the value of key as a number of hours.
	GetHour(key string) time.Duration
}

// NumberConfig reads numeric values. Missing or malformed values yield zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetFloat64(key string) float64
}

// Config is the read-only view over application configuration used by every
// module. Implementations are expected to be safe for concurrent reads.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// GetBool returns the value of key as a bool.
	GetBool(key string) bool

	// GetString returns the value of key as a string.
	GetString(key string) string

	// GetBinary returns the base64-decoded value of key, or nil when it is not
	// valid base64.
	GetBinary(key string) []byte

	// GetArray returns the value of key split on commas. Stored as
	// <element1>,<element2>,...
	GetArray(key string) []string

	// GetMap returns the value of key parsed from <k1>:<v1>,<k2>:<v2>,...
	GetMap(key string) map[string]string
}
