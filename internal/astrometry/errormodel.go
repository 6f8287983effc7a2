package astrometry

import (
	"math"
)

// PositionErrors are the per-detection error inputs of Propagate.
type PositionErrors struct {
	Dec         float64 // degrees, for the RA inflation term
	RAFitErr    float64 // degrees
	DeclFitErr  float64 // degrees
	EWSysErr    float64 // arcsec
	NSSysErr    float64 // arcsec
	ErrorRadius float64 // arcsec, already substituted if unconstrained
}

// ErrorTuple holds the propagated errors stored with an extracted source, in degrees.
type ErrorTuple struct {
	RAErr         float64
	DeclErr       float64
	UncertaintyEW float64
	UncertaintyNS float64
}

// Propagate combines fit and systematic errors in quadrature.
//
//	ra_err         = sqrt(ra_fit_err^2 + inflate(ew_sys/3600, dec)^2)
//	decl_err       = sqrt(decl_fit_err^2 + (ns_sys/3600)^2)
//	uncertainty_ew = sqrt(ew_sys^2 + error_radius^2) / 3600
//	uncertainty_ns = sqrt(ns_sys^2 + error_radius^2) / 3600
//
// The inflation term fails with ErrDomain at the poles.
func Propagate(in PositionErrors) (ErrorTuple, error) {
	inflated, err := InflateRAError(in.EWSysErr/ArcsecPerDegree, in.Dec)
	if err != nil {
		return ErrorTuple{}, err
	}

	return ErrorTuple{
		RAErr:         math.Hypot(in.RAFitErr, inflated),
		DeclErr:       math.Hypot(in.DeclFitErr, in.NSSysErr/ArcsecPerDegree),
		UncertaintyEW: math.Hypot(in.EWSysErr, in.ErrorRadius) / ArcsecPerDegree,
		UncertaintyNS: math.Hypot(in.NSSysErr, in.ErrorRadius) / ArcsecPerDegree,
	}, nil
}

// SubstituteUnconstrained replaces a non-finite error radius with sentinel.
// It reports whether the substitution happened.
func SubstituteUnconstrained(errorRadius, sentinel float64) (float64, bool) {
	if isFinite(errorRadius) {
		return errorRadius, false
	}
	return sentinel, true
}
