package spatial

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transientskp/tkpcat/internal/astrometry"
)

func TestZoneIsFloor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dec  float64
		want int
	}{
		{5.0, 5},
		{5.9999, 5},
		{0, 0},
		{-0.0001, -1},
		{-5.5, -6},
		{90, 90},
		{-90, -90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Zone(tt.dec), "dec=%v", tt.dec)
	}

	rng := rand.New(rand.NewPCG(5, 6))
	for range 10000 {
		dec := rng.Float64()*180 - 90
		assert.Equal(t, int(math.Floor(dec)), Zone(dec))
	}
}

func TestCandidateZones(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{5}, CandidateZones(5.5, 0.1))
	assert.Equal(t, []int{4, 5}, CandidateZones(5.05, 0.1))
	assert.Equal(t, []int{-1, 0}, CandidateZones(0, 0.5))
	assert.Equal(t, []int{89, 90}, CandidateZones(89.95, 0.5), "clamped at the north pole")
	assert.Equal(t, []int{-90}, CandidateZones(-89.9, 0.05))

	rng := rand.New(rand.NewPCG(7, 8))
	for range 5000 {
		dec := rng.Float64()*180 - 90
		r := rng.Float64() * 3
		assert.Contains(t, CandidateZones(dec, r), Zone(dec))
	}
}

func TestBoxRAWrap(t *testing.T) {
	t.Parallel()

	box := NewBox(Point{RA: 359.9, Dec: 0}, 0.2)
	assert.True(t, box.Contains(0.05, 0))
	assert.True(t, box.Contains(359.75, 0.1))
	assert.False(t, box.Contains(0.2, 0))
	assert.Equal(t, []RARange{{359.9 - box.RAHalfWidth, 360}, {0, 359.9 + box.RAHalfWidth - 360}}, box.RARanges())

	polar := NewBox(Point{RA: 10, Dec: 89.95}, 0.1)
	assert.True(t, polar.FullCircle())
	assert.True(t, polar.Contains(190, 89.9))
	assert.Equal(t, []RARange{{0, 360}}, polar.RARanges())
}

// TestBucketsNeverFalseNegative checks that every entry within radius on
// both axes (RA foreshortened by the mean declination) is returned.
func TestBucketsNeverFalseNegative(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(9, 10))
	idx := NewBuckets()
	var all []Entry
	for i := range 3000 {
		e := Entry{ID: int64(i + 1), RA: rng.Float64() * 360, Dec: rng.Float64()*178 - 89}
		idx.Insert(e)
		all = append(all, e)
	}
	// cluster some entries around the RA seam and a pole
	for i := range 500 {
		e := Entry{ID: int64(10000 + i), RA: math.Mod(359.5+rng.Float64(), 360), Dec: 88 + rng.Float64()*1.9}
		idx.Insert(e)
		all = append(all, e)
	}
	require.Equal(t, len(all), idx.Len())

	ctx := context.Background()
	for range 300 {
		p := Point{RA: rng.Float64() * 360, Dec: rng.Float64()*178 - 89}
		if rng.IntN(3) == 0 {
			p = Point{RA: math.Mod(359.8+rng.Float64()*0.4, 360), Dec: 88.5 + rng.Float64()}
		}
		radius := rng.Float64() * 2

		got, err := idx.Candidates(ctx, p, radius)
		require.NoError(t, err)
		ids := make(map[int64]bool, len(got))
		for _, e := range got {
			ids[e.ID] = true
		}

		for _, e := range all {
			meanDec := (p.Dec + e.Dec) / 2
			dRA := math.Abs(astrometry.WrapRA(e.RA-p.RA)) * math.Cos(meanDec*math.Pi/180)
			if math.Abs(e.Dec-p.Dec) <= radius && dRA <= radius {
				assert.True(t, ids[e.ID], "missed entry %d at (%v, %v) for query %+v r=%v", e.ID, e.RA, e.Dec, p, radius)
			}
		}
	}
}

func TestBucketsInsertReplaceRemove(t *testing.T) {
	t.Parallel()

	idx := NewBuckets()
	idx.Insert(Entry{ID: 1, RA: 10, Dec: 5})
	idx.Insert(Entry{ID: 1, RA: 10, Dec: 7.5})
	assert.Equal(t, 1, idx.Len())

	got, err := idx.Candidates(context.Background(), Point{RA: 10, Dec: 5}, 0.1)
	require.NoError(t, err)
	assert.Empty(t, got, "entry moved to zone 7")
	assert.NotNil(t, got)

	got, err = idx.Candidates(context.Background(), Point{RA: 10, Dec: 7.5}, 0.1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	idx.Remove(1)
	assert.Equal(t, 0, idx.Len())
}

func TestBucketsHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuckets().Candidates(ctx, Point{}, 1)
	require.ErrorIs(t, err, context.Canceled)
}
