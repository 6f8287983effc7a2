package quality

import (
	"strings"

	"github.com/transientskp/tkpcat/internal/errors"
)

// Reason identifies why an image was rejected. Values are rejectreason ids.
type Reason int

const (
	ReasonRMS Reason = iota
	ReasonBeam
	ReasonBrightSource
	ReasonTauTime
)

var reasonNames = map[Reason]string{
	ReasonRMS:          "rms",
	ReasonBeam:         "beam",
	ReasonBrightSource: "bright_source",
	ReasonTauTime:      "tau_time",
}

// String returns the short reason name.
func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether r is a known reason.
func (r Reason) Valid() bool {
	_, ok := reasonNames[r]
	return ok
}

// ParseReason maps a short reason name to its Reason.
func ParseReason(name string) (Reason, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for r, n := range reasonNames {
		if n == name {
			return r, nil
		}
	}
	return 0, errors.Newf("unknown reject reason %q (want rms, beam, bright_source or tau_time)", name).
		Component("quality").
		Category(errors.CategoryContract).
		Build()
}
