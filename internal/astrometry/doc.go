// Package astrometry holds the positional arithmetic of the catalog:
// equatorial to Cartesian conversion, RA error inflation toward the poles,
// propagation of fit and systematic errors, and the De Ruiter distance used
// to decide whether two detections are the same source.
//
// Positions and on-sky uncertainties are in degrees. Systematic errors and
// error radii arrive from the source finder in arcseconds.
package astrometry
