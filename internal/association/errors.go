package association

import (
	"github.com/transientskp/tkpcat/internal/errors"
)

func contractError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("association").
		Category(errors.CategoryContract).
		Build()
}

func notFoundError(err error, resource string, id int64) error {
	return errors.New(err).
		Component("association").
		Category(errors.CategoryNotFound).
		Context("resource", resource).
		Context("id", id).
		Build()
}
