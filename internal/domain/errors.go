package domain

import "fmt"

// ValidationError reports a rejected mutation. The mutation is refused before
// any state changes, so no reconciliation pass is triggered for it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an update or delete that referenced an unknown id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// DuplicateBudgetError reports an attempt to create a second budget for the
// same (category, month, year) tuple.
type DuplicateBudgetError struct {
	Category string
	Month    string
	Year     int
}

func (e *DuplicateBudgetError) Error() string {
	return fmt.Sprintf("budget for %s in %s %d already exists", e.Category, e.Month, e.Year)
}
