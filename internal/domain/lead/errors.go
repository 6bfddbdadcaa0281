package lead

import "errors"

var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidOperation = errors.New("invalid bulk operation")
)
