package tracker

import "github.com/google/uuid"

// generateID returns a UUID v7: a millisecond timestamp followed by random
// bits, so two calls in the same millisecond still differ.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
