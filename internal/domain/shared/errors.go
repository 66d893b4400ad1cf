package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports a request the ledger refuses to apply. Nothing is written when it is returned.
type ValidationError struct {
	Message string
}

func NewValidationError(format string, args ...any) ValidationError {
	return ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e ValidationError) Error() string {
	return e.Message
}

// Is matches any ValidationError when the target message is empty
func (e ValidationError) Is(target error) bool {
	t, ok := target.(ValidationError)
	if !ok {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// NotFoundError reports a missing compliance record, route, pool or bank entry
type NotFoundError struct {
	Resource string
	Key      string
}

func (e NotFoundError) Error() string {
	return e.Resource + " not found: " + e.Key
}

// Is matches any NotFoundError when the target has no resource set
func (e NotFoundError) Is(target error) bool {
	t, ok := target.(NotFoundError)
	if !ok {
		return false
	}
	if t.Resource == "" {
		return true
	}
	return t.Resource == e.Resource && (t.Key == "" || t.Key == e.Key)
}

// ConsistencyError means stored ledger state contradicts a check that already passed.
// It is never a user mistake.
type ConsistencyError struct {
	ShipID    string
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e ConsistencyError) Error() string {
	return fmt.Sprintf("ledger inconsistency for ship %s: %s of %s could not be covered by unapplied bank entries",
		e.ShipID, e.Remaining.String(), e.Requested.String())
}

// Is matches any ConsistencyError
func (e ConsistencyError) Is(target error) bool {
	_, ok := target.(ConsistencyError)
	return ok
}
