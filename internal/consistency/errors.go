package consistency

import "github.com/transientskp/tkpcat/internal/errors"

var errProbePanicked = errors.NewStd("consistency probe panicked")
