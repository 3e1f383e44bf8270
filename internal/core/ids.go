package core

import "github.com/google/uuid"

// ID prefixes per entity kind.
const (
	UserIDPrefix        = "U-"
	TagIDPrefix         = "TAG-"
	CustomFieldIDPrefix = "CF-"
	TaskIDPrefix        = "T-"
)

// IDGenerator mints fresh unique identifiers.
type IDGenerator interface {
	NewID(prefix string) string
}

type uuidGenerator struct{}

// NewIDGenerator returns an IDGenerator backed by random UUIDs.
func NewIDGenerator() IDGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID(prefix string) string {
	return prefix + uuid.NewString()
}
