package ingest

import (
	"fmt"

	"github.com/transientskp/tkpcat/internal/astrometry"
	"github.com/transientskp/tkpcat/internal/errors"
)

// contractError reports a malformed call. It is never retried.
func contractError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("ingest").
		Category(errors.CategoryContract).
		Build()
}

// domainError reports a physical input outside the supported range.
func domainError(format string, args ...any) error {
	return errors.New(fmt.Errorf("%w: "+format, append([]any{astrometry.ErrDomain}, args...)...)).
		Component("ingest").
		Category(errors.CategoryDomain).
		Build()
}

// notFoundError wraps a repository sentinel for a missing referenced row.
func notFoundError(err error, resource string, id int64) error {
	return errors.New(err).
		Component("ingest").
		Category(errors.CategoryNotFound).
		Context("resource", resource).
		Context("id", id).
		Build()
}
