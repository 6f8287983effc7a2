package association

import (
	"math"

	"github.com/transientskp/tkpcat/internal/astrometry"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/spatial"
)

// minUncertainty floors positional uncertainties (degrees) when they are
// turned into weights.
const minUncertainty = 1e-9

func weight(uncertainty float64) float64 {
	u := max(uncertainty, minUncertainty)
	return 1 / (u * u)
}

// positionOf returns the catalog position of an extracted source.
func positionOf(s *entities.ExtractedSource) astrometry.Position {
	return astrometry.Position{
		RA:            s.RA,
		Dec:           s.Decl,
		UncertaintyEW: s.UncertaintyEW,
		UncertaintyNS: s.UncertaintyNS,
	}
}

// catalogPosition returns the weighted-mean position of a running-catalog source.
func catalogPosition(rc *entities.RunningCatalog) astrometry.Position {
	return astrometry.Position{
		RA:            rc.WmRA,
		Dec:           rc.WmDecl,
		UncertaintyEW: rc.WmUncertaintyEW,
		UncertaintyNS: rc.WmUncertaintyNS,
	}
}

// newRunningCatalog starts a running-catalog source from its first detection.
func newRunningCatalog(datasetID int64, s *entities.ExtractedSource) *entities.RunningCatalog {
	rc := &entities.RunningCatalog{
		Xtrsrc:      s.ID,
		Dataset:     datasetID,
		Datapoints:  1,
		WmRA:        s.RA,
		WmDecl:      s.Decl,
		AvgWeightEW: weight(s.UncertaintyEW),
		AvgWeightNS: weight(s.UncertaintyNS),
	}
	refresh(rc)
	return rc
}

// accumulate folds one more detection into the inverse-variance weighted
// mean position. RA offsets are wrapped so sources straddling RA 0 average
// correctly.
func accumulate(rc *entities.RunningCatalog, s *entities.ExtractedSource) {
	n := float64(rc.Datapoints)
	wEW, wNS := weight(s.UncertaintyEW), weight(s.UncertaintyNS)
	sumEW := rc.AvgWeightEW*n + wEW
	sumNS := rc.AvgWeightNS*n + wNS

	rc.WmRA = normalizeRA(rc.WmRA + astrometry.WrapRA(s.RA-rc.WmRA)*wEW/sumEW)
	rc.WmDecl = clampDec(rc.WmDecl + (s.Decl-rc.WmDecl)*wNS/sumNS)

	rc.Datapoints++
	n = float64(rc.Datapoints)
	rc.AvgWeightEW = sumEW / n
	rc.AvgWeightNS = sumNS / n
	refresh(rc)
}

// refresh recomputes the columns derived from the weighted mean.
func refresh(rc *entities.RunningCatalog) {
	n := float64(rc.Datapoints)
	if sum := rc.AvgWeightEW * n; sum > 0 {
		rc.WmUncertaintyEW = 1 / math.Sqrt(sum)
	}
	if sum := rc.AvgWeightNS * n; sum > 0 {
		rc.WmUncertaintyNS = 1 / math.Sqrt(sum)
	}
	rc.Zone = spatial.Zone(rc.WmDecl)
	rc.X, rc.Y, rc.Z = astrometry.EquatorialToCartesian(rc.WmRA, rc.WmDecl)
}

// rebuild recomputes a running-catalog source from all its detections,
// processed in id order.
func rebuild(rc *entities.RunningCatalog, sources []entities.ExtractedSource) {
	if len(sources) == 0 {
		return
	}
	fresh := newRunningCatalog(rc.Dataset, &sources[0])
	for i := 1; i < len(sources); i++ {
		accumulate(fresh, &sources[i])
	}
	fresh.ID = rc.ID
	fresh.MonSrc = rc.MonSrc
	*rc = *fresh
}

func normalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	if ra >= 360 {
		ra = 0
	}
	return ra
}

func clampDec(dec float64) float64 {
	return min(max(dec, -90), 90)
}

// separationArcsec is the great-circle distance between a detection and a
// catalog position.
func separationArcsec(a, b astrometry.Position) float64 {
	return astrometry.SeparationDegrees(a.RA, a.Dec, b.RA, b.Dec) * astrometry.ArcsecPerDegree
}
