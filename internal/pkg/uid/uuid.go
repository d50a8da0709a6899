package uid

import "github.com/google/uuid"

// UUID generates version 7 UUIDs, so primary keys sort by creation time.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (*UUID) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
