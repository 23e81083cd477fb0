// Package service implements the application logic between the HTTP
// handlers and storage: input validation, the unified transaction stream,
// budget alert evaluation, and room balance computation.
package service

import "errors"

var (
	// ErrInvalidInput marks validation failures; handlers map it to 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotMember is returned when the acting user is not a member of the
	// room they are operating on; handlers map it to 403.
	ErrNotMember = errors.New("not a member of this room")
)
