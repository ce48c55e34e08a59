// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gosp3

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Position and velocity linear in time, so any fit window reproduces them
// exactly and a mid-epoch query has a closed-form expectation.
func linX(i float64) float64 { return 15000.0 + 0.5*i }
func linY(i float64) float64 { return -8000.0 + 0.25*i }
func linZ(i float64) float64 { return 20000.0 - 0.5*i }
func linVX(i float64) float64 { return 5.0 + 0.1*i }
func linVY(i float64) float64 { return -3.0 + 0.2*i }
func linVZ(i float64) float64 { return 1.0 + 0.3*i }

func linearSp3Lines(numEpochs int, withVel bool) []string {
	lines := sp3HeaderLines(numEpochs)
	for i := 0; i < numEpochs; i++ {
		fi := float64(i)
		lines = append(lines, epochLine(i),
			posLine("G07", linX(fi), linY(fi), linZ(fi), 12.3456))
		if withVel {
			lines = append(lines, velLine("G07", linVX(fi), linVY(fi), linVZ(fi), 0.0125))
		}
	}
	return append(lines, "EOF")
}

func linearInterpolator(t *testing.T, numEpochs int, withVel bool) *SvInterpolator {
	t.Helper()
	sp3 := openSp3(t, linearSp3Lines(numEpochs, withVel))
	opt := NewInterpOpt()
	opt.MaxDiff = 2000 * time.Second
	itp, err := NewSvInterpolator(sp3, "G07", opt)
	require.NoError(t, err)
	return itp
}

func TestInterpolateAt(t *testing.T) {
	itp := linearInterpolator(t, 6, true)
	assert.Equal(t, 6, itp.NumDpts())
	assert.True(t, itp.HasVelocity())

	var pos, perr, vel, verr [3]float64

	// mid-epoch query, i = 2.5
	q := GTime{Week: tstWeek, Sec: tstSow + 2.5*tstInterval}
	require.NoError(t, itp.InterpolateAt(q, &pos, &perr, &vel, &verr))
	assert.InDelta(t, linX(2.5), pos[0], 1e-6)
	assert.InDelta(t, linY(2.5), pos[1], 1e-6)
	assert.InDelta(t, linZ(2.5), pos[2], 1e-6)
	assert.InDelta(t, linVX(2.5), vel[0], 1e-6)
	assert.InDelta(t, linVY(2.5), vel[1], 1e-6)
	assert.InDelta(t, linVZ(2.5), vel[2], 1e-6)

	// the fit error estimates of exactly-linear data are negligible
	for k := 0; k < 3; k++ {
		assert.Less(t, perr[k], 1e-6)
		assert.Less(t, verr[k], 1e-6)
	}

	// exact hit on a data epoch
	require.NoError(t, itp.InterpolateAt(tstEpoch(2), &pos, &perr, nil, nil))
	assert.InDelta(t, linX(2), pos[0], 1e-6)
	assert.InDelta(t, linY(2), pos[1], 1e-6)
	assert.InDelta(t, linZ(2), pos[2], 1e-6)
}

func TestInterpolateScan(t *testing.T) {
	itp := linearInterpolator(t, 8, false)

	var pos [3]float64

	// an advancing query pattern exercises the hunt fast path; the long
	// jump forward exercises the cache-seeded bisection and the jump back
	// at the end the full-range bisection
	queries := []float64{2.25, 2.5, 2.75, 3.0, 5.25, 5.5, 2.5}
	for _, qi := range queries {
		q := GTime{Week: tstWeek, Sec: tstSow + qi*tstInterval}
		require.NoError(t, itp.InterpolateAt(q, &pos, nil, nil, nil), "i=%v", qi)
		assert.InDelta(t, linX(qi), pos[0], 1e-6, "i=%v", qi)
		assert.InDelta(t, linY(qi), pos[1], 1e-6, "i=%v", qi)
		assert.InDelta(t, linZ(qi), pos[2], 1e-6, "i=%v", qi)
	}
}

func TestInterpolateFewDataPoints(t *testing.T) {
	itp := linearInterpolator(t, 6, false)

	var pos [3]float64

	// at the first epoch there is only one point on the left
	err := itp.InterpolateAt(tstEpoch(0), &pos, nil, nil, nil)
	assert.ErrorIs(t, err, ErrFewDataPoints)

	// at the last epoch there is none on the right
	err = itp.InterpolateAt(tstEpoch(5), &pos, nil, nil, nil)
	assert.ErrorIs(t, err, ErrFewDataPoints)

	// before the first data point
	err = itp.InterpolateAt(GTime{Week: tstWeek, Sec: tstSow - 100}, &pos, nil, nil, nil)
	assert.ErrorIs(t, err, ErrFewDataPoints)
}

func TestInterpolatorDropsAbsentBlocks(t *testing.T) {
	lines := sp3HeaderLines(6)
	for i := 0; i < 6; i++ {
		fi := float64(i)
		lines = append(lines, epochLine(i))
		if i == 3 {
			// no usable position, no usable clock: the block carries nothing
			lines = append(lines, posLine("G07", 0.0, 0.0, 0.0, 999999.999999))
		} else {
			lines = append(lines, posLine("G07", linX(fi), linY(fi), linZ(fi), 12.3456))
		}
	}
	lines = append(lines, "EOF")

	sp3 := openSp3(t, lines)
	itp, err := NewSvInterpolator(sp3, "G07", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, itp.NumDpts())
}

func TestInterpolatorUnknownSat(t *testing.T) {
	sp3 := openSp3(t, linearSp3Lines(6, false))
	_, err := NewSvInterpolator(sp3, "G99", nil)
	assert.Error(t, err)
}

func TestInterpolatorNoUsableBlocks(t *testing.T) {
	lines := sp3HeaderLines(2)
	for i := 0; i < 2; i++ {
		lines = append(lines, epochLine(i),
			posLine("G07", 0.0, 0.0, 0.0, 999999.999999))
	}
	lines = append(lines, "EOF")

	sp3 := openSp3(t, lines)
	_, err := NewSvInterpolator(sp3, "G07", nil)
	assert.ErrorIs(t, err, ErrFewDataPoints)
}

// A minimal well-formed product: 3 epochs at the file interval, one
// satellite, position and velocity at every epoch.
func TestInterpolateThreeEpochFile(t *testing.T) {
	sp3 := openSp3(t, tinySp3Lines())
	opt := NewInterpOpt()
	opt.MaxDiff = 1000 * time.Second
	itp, err := NewSvInterpolator(sp3, "G07", opt)
	require.NoError(t, err)
	require.Equal(t, 3, itp.NumDpts())

	// exact hit on the middle epoch returns its stored state with
	// negligible fit error
	var pos, perr, vel [3]float64
	require.NoError(t, itp.InterpolateAt(tstEpoch(1), &pos, &perr, &vel, nil))
	assert.InDelta(t, 15000.5, pos[0], 1e-9)
	assert.InDelta(t, -7999.75, pos[1], 1e-9)
	assert.InDelta(t, 19999.5, pos[2], 1e-9)
	assert.InDelta(t, 5.1, vel[0], 1e-9)
	for k := 0; k < 3; k++ {
		assert.Less(t, perr[k], 1e-6)
	}

	// beyond the last epoch by more than the radius
	last := tstEpoch(2)
	q := last.AddSec(opt.MaxDiff.Seconds() + 100)
	assert.ErrorIs(t, itp.InterpolateAt(q, &pos, nil, nil, nil), ErrFewDataPoints)
}

func TestInterpolateNoVelocityRecords(t *testing.T) {
	itp := linearInterpolator(t, 6, false)
	assert.False(t, itp.HasVelocity())

	var pos, vel [3]float64
	q := GTime{Week: tstWeek, Sec: tstSow + 2.5*tstInterval}
	assert.Error(t, itp.InterpolateAt(q, &pos, nil, &vel, nil))

	// the position-only query still works
	require.NoError(t, itp.InterpolateAt(q, &pos, nil, nil, nil))
	assert.InDelta(t, linX(2.5), pos[0], 1e-6)
}

func TestTimeSpan(t *testing.T) {
	itp := linearInterpolator(t, 6, false)
	first, last := itp.TimeSpan()
	assert.InDelta(t, tstSow, first.Sec, 1e-9)
	assert.InDelta(t, tstSow+5*tstInterval, last.Sec, 1e-9)
}
