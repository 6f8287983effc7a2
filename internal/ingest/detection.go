package ingest

import (
	"fmt"
	"math"
	"strings"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/errors"
)

// ExtractType says how the source finder produced a set of detections.
type ExtractType int

const (
	// Blind detections were found without prior position knowledge.
	Blind ExtractType = entities.ExtractTypeBlind
	// ForcedNull detections are forced fits at running-catalog positions
	// that were not detected blindly in the image.
	ForcedNull ExtractType = entities.ExtractTypeForcedNull
	// ForcedMonitor detections are forced fits at monitor positions.
	ForcedMonitor ExtractType = entities.ExtractTypeForcedMonitor
)

var extractTypeNames = map[ExtractType]string{
	Blind:         "blind",
	ForcedNull:    "ff_nd",
	ForcedMonitor: "ff_ms",
}

// String returns the pipeline name of the extract type.
func (t ExtractType) String() string {
	if name, ok := extractTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("extract_type(%d)", int(t))
}

// Valid reports whether t is one of the three known extract types.
func (t ExtractType) Valid() bool {
	_, ok := extractTypeNames[t]
	return ok
}

// ParseExtractType parses "blind", "ff_nd" or "ff_ms".
func ParseExtractType(s string) (ExtractType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range extractTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, contractError("not a valid extractedsource insert type: %q", s)
}

// Detection is one source fit produced by the source finder.
//
// Positions and fit errors are in degrees, fluxes in Jy, beam axes in
// arcseconds, the position angle in degrees. Systematic errors and the
// error radius are in arcseconds; an infinite error radius marks an
// unconstrained position.
type Detection struct {
	RA           float64 `yaml:"ra"`
	Dec          float64 `yaml:"dec"`
	RAFitErr     float64 `yaml:"ra_fit_err"`
	DeclFitErr   float64 `yaml:"decl_fit_err"`
	PeakFlux     float64 `yaml:"peak_flux"`
	PeakFluxErr  float64 `yaml:"peak_flux_err"`
	IntFlux      float64 `yaml:"int_flux"`
	IntFluxErr   float64 `yaml:"int_flux_err"`
	Significance float64 `yaml:"significance"`
	Semimajor    float64 `yaml:"semimajor"`
	Semiminor    float64 `yaml:"semiminor"`
	PA           float64 `yaml:"pa"`
	EWSysErr     float64 `yaml:"ew_sys_err"`
	NSSysErr     float64 `yaml:"ns_sys_err"`
	ErrorRadius  float64 `yaml:"error_radius"`
	GaussianFit  bool    `yaml:"gaussian_fit"`
}

// checkFluxErrors rejects fits whose flux errors are not finite. Such fits
// are dropped, not stored.
func (d *Detection) checkFluxErrors() error {
	if isFinite(d.PeakFluxErr) && isFinite(d.IntFluxErr) {
		return nil
	}
	return errors.Newf("non-finite flux error (peak %v, integrated %v)", d.PeakFluxErr, d.IntFluxErr).
		Component("ingest").
		Category(errors.CategoryDataQuality).
		Context("ra", d.RA).
		Context("dec", d.Dec).
		Build()
}

// checkErrors validates the positional error inputs. The error radius may
// be infinite; it is substituted later.
func (d *Detection) checkErrors() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"ra_fit_err", d.RAFitErr},
		{"decl_fit_err", d.DeclFitErr},
		{"ew_sys_err", d.EWSysErr},
		{"ns_sys_err", d.NSSysErr},
	} {
		if !isFinite(f.value) || f.value < 0 {
			return domainError("%s %v must be finite and non-negative", f.name, f.value)
		}
	}
	if math.IsNaN(d.ErrorRadius) || d.ErrorRadius < 0 {
		return domainError("error_radius %v must be non-negative", d.ErrorRadius)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
