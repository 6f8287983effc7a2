package astrometry

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transientskp/tkpcat/internal/errors"
)

func TestEquatorialToCartesianUnitNorm(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for range 10000 {
		ra := rng.Float64() * 360
		dec := rng.Float64()*180 - 90
		x, y, z := EquatorialToCartesian(ra, dec)
		assert.InDelta(t, 1.0, math.Sqrt(x*x+y*y+z*z), 1e-9, "ra=%v dec=%v", ra, dec)
	}

	for _, dec := range []float64{-90, 90} {
		x, y, z := EquatorialToCartesian(123, dec)
		assert.InDelta(t, 1.0, math.Sqrt(x*x+y*y+z*z), 1e-9)
	}
}

func TestEquatorialToCartesianAxes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ra, dec float64
		x, y, z float64
	}{
		{"origin", 0, 0, 1, 0, 0},
		{"ra 90", 90, 0, 0, 1, 0},
		{"north pole", 0, 90, 0, 0, 1},
		{"south pole", 0, -90, 0, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			x, y, z := EquatorialToCartesian(tt.ra, tt.dec)
			assert.InDelta(t, tt.x, x, 1e-12)
			assert.InDelta(t, tt.y, y, 1e-12)
			assert.InDelta(t, tt.z, z, 1e-12)
		})
	}
}

func TestInflateRAError(t *testing.T) {
	t.Parallel()

	got, err := InflateRAError(1.0/3600, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3600, got, 1e-12, "no inflation at the equator")

	got, err = InflateRAError(1.0/3600, 60)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3600, got, 1e-9, "1/cos(60) doubles the RA error")

	got, err = InflateRAError(0.5, 89.5)
	require.NoError(t, err)
	assert.InDelta(t, 180.0, got, 0, "circle reaching the pole covers every RA")

	for _, dec := range []float64{90, -90, 91, math.NaN(), math.Inf(1)} {
		_, err := InflateRAError(1.0/3600, dec)
		require.Error(t, err, "dec=%v", dec)
		assert.ErrorIs(t, err, ErrDomain)
		assert.True(t, errors.IsCategory(err, errors.CategoryDomain))
	}

	_, err = InflateRAError(-1, 10)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestInflateRAErrorMonotonicInDec(t *testing.T) {
	t.Parallel()

	prev := 0.0
	for dec := 0.0; dec < 89; dec += 0.5 {
		got, err := InflateRAError(0.01, dec)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestPropagate(t *testing.T) {
	t.Parallel()

	got, err := Propagate(PositionErrors{
		Dec:         0,
		RAFitErr:    3.0 / 3600,
		DeclFitErr:  3.0 / 3600,
		EWSysErr:    4,
		NSSysErr:    4,
		ErrorRadius: 3,
	})
	require.NoError(t, err)

	assert.InDelta(t, 5.0/3600, got.RAErr, 1e-12)
	assert.InDelta(t, 5.0/3600, got.DeclErr, 1e-12)
	assert.InDelta(t, 5.0/3600, got.UncertaintyEW, 1e-12)
	assert.InDelta(t, 5.0/3600, got.UncertaintyNS, 1e-12)

	_, err = Propagate(PositionErrors{Dec: 90, EWSysErr: 1})
	assert.ErrorIs(t, err, ErrDomain)
}

func TestPropagateUnconstrainedRadiusStaysBounded(t *testing.T) {
	t.Parallel()

	radius, substituted := SubstituteUnconstrained(math.Inf(1), 360)
	require.True(t, substituted)

	got, err := Propagate(PositionErrors{Dec: 10, EWSysErr: 1, NSSysErr: 1, ErrorRadius: radius})
	require.NoError(t, err)
	assert.False(t, math.IsInf(got.UncertaintyEW, 0))
	assert.InDelta(t, 0.1, got.UncertaintyEW, 1e-5)

	r, substituted := SubstituteUnconstrained(2.5, 360)
	assert.False(t, substituted)
	assert.InDelta(t, 2.5, r, 0)

	r, substituted = SubstituteUnconstrained(math.NaN(), 360)
	assert.True(t, substituted)
	assert.InDelta(t, 360, r, 0)
}

func TestWrapRA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{10, 10},
		{359.5, -0.5},
		{-359.5, 0.5},
		{180, 180},
		{-180, 180},
		{720.25, 0.25},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, WrapRA(tt.in), 1e-9, "in=%v", tt.in)
	}
}

func TestDeRuiter(t *testing.T) {
	t.Parallel()

	sigma := math.Hypot(0.5, 1) / 3600
	a := Position{RA: 10, Dec: 5, UncertaintyEW: sigma, UncertaintyNS: sigma}
	b := Position{RA: 10.0005, Dec: 5.0003, UncertaintyEW: sigma, UncertaintyNS: sigma}

	d := DeRuiter(a, b)
	assert.InDelta(t, 1.324, d, 1e-3)
	assert.InDelta(t, d, DeRuiter(b, a), 1e-12, "symmetric")
	assert.InDelta(t, 0, DeRuiter(a, a), 0)

	wrapA := Position{RA: 359.9999, Dec: 0, UncertaintyEW: sigma, UncertaintyNS: sigma}
	wrapB := Position{RA: 0.0001, Dec: 0, UncertaintyEW: sigma, UncertaintyNS: sigma}
	assert.Less(t, DeRuiter(wrapA, wrapB), 1.0, "RA wrap-around is handled")

	zero := Position{RA: 10, Dec: 5}
	assert.True(t, math.IsInf(DeRuiter(zero, Position{RA: 10.1, Dec: 5}), 1))
}

func TestMatchRadiusBoundsDeRuiter(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 4))
	const threshold = 3.717
	for range 5000 {
		a := Position{RA: rng.Float64() * 360, Dec: rng.Float64()*170 - 85,
			UncertaintyEW: rng.Float64() / 3600, UncertaintyNS: rng.Float64() / 3600}
		b := Position{RA: a.RA + (rng.Float64()-0.5)*0.01, Dec: a.Dec + (rng.Float64()-0.5)*0.01,
			UncertaintyEW: rng.Float64() / 3600, UncertaintyNS: rng.Float64() / 3600}
		if DeRuiter(a, b) > threshold {
			continue
		}
		r := MatchRadius(threshold, max(a.UncertaintyEW, a.UncertaintyNS), max(b.UncertaintyEW, b.UncertaintyNS))
		assert.LessOrEqual(t, math.Abs(a.Dec-b.Dec), r)
	}
}

func TestValidatePosition(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidatePosition(0, -90))
	require.NoError(t, ValidatePosition(359.999, 90))
	for _, p := range [][2]float64{{360, 0}, {-1, 0}, {10, 90.5}, {math.NaN(), 0}, {10, math.Inf(-1)}} {
		assert.ErrorIs(t, ValidatePosition(p[0], p[1]), ErrDomain, "ra=%v dec=%v", p[0], p[1])
	}
}

func TestSeparationDegrees(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 90, SeparationDegrees(0, 0, 0, 90), 1e-9)
	assert.InDelta(t, 1, SeparationDegrees(359.5, 0, 0.5, 0), 1e-9)
	assert.InDelta(t, 0, SeparationDegrees(12, 34, 12, 34), 1e-12)
}
