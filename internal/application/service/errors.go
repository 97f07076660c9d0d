package service

import (
	"errors"
	"fmt"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
)

// ErrAllocationExhausted means every identity drawn within the retry budget
// was already taken.
var ErrAllocationExhausted = errors.New("application identity allocation exhausted")

// NotificationError reports that an update was committed but the
// confirmation email could not be sent.
type NotificationError struct {
	ApplicationID models.ApplicationID
	Err           error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("application %s updated but confirmation not sent: %v", e.ApplicationID, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

func notFound() error {
	return dErrors.New(dErrors.CodeNotFound, "application not found")
}
