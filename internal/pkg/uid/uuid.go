package uid

import "github.com/google/uuid"

// UUID generates random RFC 9562 version 4 identifiers.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new canonical UUID string. Version 4 is used so the
// value leaks nothing about when it was minted.
func (*UUID) Generate() string {
	return uuid.NewString()
}
