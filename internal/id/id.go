package id

import "github.com/google/uuid"

// GenerateID returns a random session identifier.
func GenerateID() string {
	return uuid.NewString()
}
