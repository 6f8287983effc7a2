// Package spatial partitions the sky into declination zones and answers
// coarse "which catalog sources could be within radius of this point" queries.
//
// Every Index implementation may return false positives but never a false
// negative: a source within radius of the query point on both axes is always
// returned. Exact matching is left to the caller.
package spatial

import (
	"context"
	"math"

	"github.com/transientskp/tkpcat/internal/astrometry"
)

// ZoneHeight is the declination height of a zone in degrees.
const ZoneHeight = 1.0

const (
	minZone = -90
	maxZone = 90
)

// Zone returns the zone id of a declination: floor(dec).
func Zone(dec float64) int {
	return int(math.Floor(dec / ZoneHeight))
}

// CandidateZones returns the zones floor(dec-radius) through floor(dec+radius),
// clamped to the sky. The zone of dec itself is always included.
func CandidateZones(dec, radius float64) []int {
	radius = math.Abs(radius)
	lo := max(Zone(dec-radius), minZone)
	hi := min(Zone(dec+radius), maxZone)

	zones := make([]int, 0, hi-lo+1)
	for z := lo; z <= hi; z++ {
		zones = append(zones, z)
	}
	return zones
}

// Point is a sky position in degrees.
type Point struct {
	RA  float64
	Dec float64
}

// Entry is one indexed catalog source.
type Entry struct {
	ID            int64
	RA            float64
	Dec           float64
	UncertaintyEW float64 // degrees
	UncertaintyNS float64 // degrees
}

// Index is the spatial lookup capability used by association.
type Index interface {
	// Candidates returns every entry whose RA and Dec offsets from p are
	// within radius degrees on the sky, plus possibly some that are not.
	Candidates(ctx context.Context, p Point, radius float64) ([]Entry, error)
}

// Box is the RA/Dec bounding box of a search around a point.
type Box struct {
	MinDec, MaxDec float64
	CenterRA       float64
	RAHalfWidth    float64 // degrees of RA, 180 means every RA
	Zones          []int
}

// Slack widens the box against rounding in the comparisons and trigonometry.
const (
	decSlack = 1e-9
	raSlack  = 1e-9
)

// NewBox builds the bounding box of offsets up to radius around p. The RA
// half-width covers on-sky offsets up to radius at any declination inside the box.
func NewBox(p Point, radius float64) Box {
	radius = math.Abs(radius)
	box := Box{
		MinDec:   p.Dec - radius - decSlack,
		MaxDec:   p.Dec + radius + decSlack,
		CenterRA: p.RA,
		Zones:    CandidateZones(p.Dec, radius+decSlack),
	}

	extreme := math.Abs(p.Dec) + radius
	if extreme >= 90 || radius >= 90 {
		box.RAHalfWidth = 180
		return box
	}

	halfWidth := radius / math.Cos(extreme*math.Pi/180)
	if inflated, err := astrometry.InflateRAError(radius, p.Dec); err == nil {
		halfWidth = max(halfWidth, inflated)
	} else {
		halfWidth = 180
	}
	box.RAHalfWidth = min(halfWidth+raSlack, 180)
	return box
}

// FullCircle reports whether the box covers every right ascension.
func (b Box) FullCircle() bool {
	return b.RAHalfWidth >= 180
}

// Contains reports whether (ra, dec) lies inside the box.
func (b Box) Contains(ra, dec float64) bool {
	if dec < b.MinDec || dec > b.MaxDec {
		return false
	}
	if b.FullCircle() {
		return true
	}
	return math.Abs(astrometry.WrapRA(ra-b.CenterRA)) <= b.RAHalfWidth
}

// RARange is a closed interval of right ascension within [0, 360].
type RARange struct {
	Min, Max float64
}

// RARanges splits the box's RA extent into at most two non-wrapping intervals,
// suitable for BETWEEN predicates.
func (b Box) RARanges() []RARange {
	if b.FullCircle() {
		return []RARange{{0, 360}}
	}
	lo := b.CenterRA - b.RAHalfWidth
	hi := b.CenterRA + b.RAHalfWidth
	switch {
	case lo < 0:
		return []RARange{{0, hi}, {lo + 360, 360}}
	case hi >= 360:
		return []RARange{{lo, 360}, {0, hi - 360}}
	default:
		return []RARange{{lo, hi}}
	}
}
