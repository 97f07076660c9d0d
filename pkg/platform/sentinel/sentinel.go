package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// so services can translate them into domain errors without knowing which
// backend produced them.
//
//   - ErrNotFound: record does not exist, or has been soft-deleted
//   - ErrAlreadyUsed: a unique key (the application identity) is already taken
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
)
