// Package datastore provides error handling helpers for database operations
package datastore

import (
	"context"
	"fmt"

	"github.com/transientskp/tkpcat/internal/errors"
)

// dbError creates a properly categorized database error with context
func dbError(err error, operation, priority string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	if priority != "" {
		builder = builder.Priority(priority)
	}

	// Add context pairs
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// validationError creates a validation error
func validationError(message, field string, value any) error {
	return errors.Newf("%s", message).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("value", fmt.Sprintf("%v", value)).
		Build()
}

// transactionError classifies an error that aborted a transaction. Errors the
// callback already categorized pass through unchanged; everything else is a
// storage failure.
func transactionError(ctx context.Context, err error, operation string) error {
	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) && enhanced.Category != errors.CategoryGeneric {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryCancellation).
			Context("operation", operation).
			Build()
	}
	return dbError(err, operation, errors.PriorityHigh)
}
