package astrometry

import (
	"fmt"
	"math"

	"github.com/transientskp/tkpcat/internal/errors"
)

// ArcsecPerDegree converts between the finder's arcsecond errors and catalog degrees.
const ArcsecPerDegree = 3600.0

// poleLimit is the |dec|+theta beyond which an error circle spans every RA.
const poleLimit = 89.9

// ErrDomain marks a physical input outside the range a computation supports.
var ErrDomain = errors.NewStd("position outside supported domain")

func domainError(format string, args ...any) error {
	return errors.New(fmt.Errorf("%w: "+format, append([]any{ErrDomain}, args...)...)).
		Component("astrometry").
		Category(errors.CategoryDomain).
		Build()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// ValidatePosition checks ra in [0, 360) and dec in [-90, 90].
func ValidatePosition(ra, dec float64) error {
	if !isFinite(ra) || ra < 0 || ra >= 360 {
		return domainError("ra %v not in [0, 360)", ra)
	}
	if !isFinite(dec) || dec < -90 || dec > 90 {
		return domainError("dec %v not in [-90, 90]", dec)
	}
	return nil
}

// EquatorialToCartesian returns the unit vector pointing at (ra, dec).
func EquatorialToCartesian(ra, dec float64) (x, y, z float64) {
	a, d := radians(ra), radians(dec)
	cosD := math.Cos(d)
	return cosD * math.Cos(a), cosD * math.Sin(a), math.Sin(d)
}

// RACosDecl returns ra*cos(dec), the foreshortened right ascension.
func RACosDecl(ra, dec float64) float64 {
	return ra * math.Cos(radians(dec))
}

// InflateRAError converts an isotropic on-sky error theta into the error of the
// RA coordinate at declination dec, both in degrees. The RA extent of a circle
// of radius theta is asin(sin(theta)/cos(dec)); circles reaching within 0.1
// degree of a pole cover every RA and return 180. Declinations at or beyond
// the poles fail with ErrDomain.
func InflateRAError(theta, dec float64) (float64, error) {
	if !isFinite(theta) || theta < 0 {
		return 0, domainError("angular error %v must be finite and non-negative", theta)
	}
	if !isFinite(dec) || math.Abs(dec) >= 90 {
		return 0, domainError("ra error undefined at dec %v", dec)
	}
	if math.Abs(dec)+theta > poleLimit {
		return 180, nil
	}

	denom := math.Sqrt(math.Abs(math.Cos(radians(dec-theta)) * math.Cos(radians(dec+theta))))
	return degrees(math.Abs(math.Atan(math.Sin(radians(theta)) / denom))), nil
}

// WrapRA folds an RA difference into (-180, 180].
func WrapRA(delta float64) float64 {
	delta = math.Mod(delta, 360)
	switch {
	case delta > 180:
		delta -= 360
	case delta <= -180:
		delta += 360
	}
	return delta
}

// SeparationDegrees is the great-circle distance between two positions.
func SeparationDegrees(ra1, dec1, ra2, dec2 float64) float64 {
	d1, d2 := radians(dec1), radians(dec2)
	dDec := d2 - d1
	dRA := radians(WrapRA(ra2 - ra1))

	sDec, sRA := math.Sin(dDec/2), math.Sin(dRA/2)
	h := sDec*sDec + math.Cos(d1)*math.Cos(d2)*sRA*sRA
	return degrees(2 * math.Asin(math.Min(1, math.Sqrt(h))))
}
