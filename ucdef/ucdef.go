// Package ucdef defines use case definitions that are used across the application.
package ucdef

import "context"

// UserAction represents a synchronous operation triggered by an HTTP request.
// The caller waits for the result, and errors are returned to it as the HTTP response.
//
// Type parameters:
//   - I: Input data type (request payload, a pointer to a struct)
//   - O: Output data type (response body)
type UserAction[I, O any] interface {
	// OperationID returns a unique identifier for the use case.
	OperationID() string

	// Execute executes the use case.
	Execute(ctx context.Context, in I) (O, error)
}
