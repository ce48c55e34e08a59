// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gosp3

import (
	"errors"
	"fmt"
	"time"
)

// Options for NewSvInterpolator
type InterpOpt struct {
	// Max time distance between the query epoch and a usable data point.
	// Data points further out are excluded from the fit window.
	MaxDiff time.Duration

	// Min number of data points required on each side of the query epoch.
	MinDpts int
}

// Create the default options for NewSvInterpolator
func NewInterpOpt() *InterpOpt {
	return &InterpOpt{
		MaxDiff: DEFAULT_MAX_DIFF,
		MinDpts: MIN_DPTS_EACH_SIDE,
	}
}

// Interpolator of the position (and velocity, when the file carries velocity
// records) of one satellite over the data blocks of an SP3 file. All blocks
// are read in up front; queries touch the file no further and allocate
// nothing. Not safe for concurrent use: queries share one scratch arena.
type SvInterpolator struct {
	id       SatType
	fn       string
	interval time.Duration
	maxDiff  time.Duration
	minDpts  int
	hasVel   bool
	t0       GTime          // file start epoch; abscissa origin for the fit
	data     []Sp3DataBlock // usable blocks, time-ascending

	ihunt int // window hunt cache: last returned index

	// query scratch, sized once from maxDiff and the file interval
	wsz            int
	td, xd, yd, zd []float64
	ws             []float64
}

// Create an interpolator for satellite sat, reading every usable data block
// of sp3 into memory. A block whose position and clock are both flagged
// bad/absent contributes nothing and is dropped. The reader's cursor is
// rewound and consumed up to the EOF marker.
func NewSvInterpolator(sp3 *Sp3, sat SatType, opt *InterpOpt) (*SvInterpolator, error) {
	if opt == nil {
		opt = NewInterpOpt()
	}
	if !sp3.HasSv(sat) {
		return nil, fmt.Errorf("satellite %s is not declared in %s", sat, sp3.filename)
	}
	if opt.MaxDiff <= 0 || opt.MinDpts < 1 {
		return nil, fmt.Errorf("bad interpolation options: maxdiff=%v mindpts=%d", opt.MaxDiff, opt.MinDpts)
	}
	p := &SvInterpolator{
		id:       sat,
		fn:       sp3.filename,
		interval: sp3.Interval(),
		maxDiff:  opt.MaxDiff,
		minDpts:  opt.MinDpts,
		t0:       sp3.StartEpoch(),
	}
	if err := p.feed(sp3); err != nil {
		return nil, fmt.Errorf("failed to feed interpolator for %s: %w", sat, err)
	}
	if len(p.data) == 0 {
		return nil, fmt.Errorf("%w: no usable blocks for %s in %s",
			ErrFewDataPoints, sat, sp3.filename)
	}
	p.sizeWorkspace()
	return p, nil
}

func (p *SvInterpolator) feed(sp3 *Sp3) error {
	if err := sp3.Rewind(); err != nil {
		return err
	}
	p.data = make([]Sp3DataBlock, 0, sp3.NumEpochs())
	var block Sp3DataBlock
	for {
		err := sp3.NextDataBlock(p.id, &block)
		if errors.Is(err, ErrEndOfData) {
			return nil
		}
		if err != nil {
			return err
		}
		if block.Flag.IsSet(EVENT_BAD_ABSENT_POSITION | EVENT_BAD_ABSENT_CLOCK) {
			PrintD(2, "dropping all-absent block of %s at %s\n", p.id, block.T.String())
			continue
		}
		if !block.Flag.IsSet(EVENT_BAD_ABSENT_VELOCITY) {
			p.hasVel = true
		}
		p.data = append(p.data, block)
	}
}

// One fit window never holds more than 2*(maxdiff/interval)+3 points, so the
// scratch arrays are carved out of a single arena of that size, once.
func (p *SvInterpolator) sizeWorkspace() {
	oneSide := int(p.maxDiff/p.interval) + 1
	p.wsz = 2*oneSide + 1
	arena := make([]float64, 10*p.wsz)
	p.td = arena[0*p.wsz : 1*p.wsz]
	p.xd = arena[1*p.wsz : 2*p.wsz]
	p.yd = arena[2*p.wsz : 3*p.wsz]
	p.zd = arena[3*p.wsz : 4*p.wsz]
	p.ws = arena[4*p.wsz:]
}

func (p *SvInterpolator) Sat() SatType { return p.id }

// Number of usable data blocks read in.
func (p *SvInterpolator) NumDpts() int { return len(p.data) }

// Whether the file carried velocity records for this satellite.
func (p *SvInterpolator) HasVelocity() bool { return p.hasVel }

// Time of the first and the last usable data block.
func (p *SvInterpolator) TimeSpan() (GTime, GTime) {
	return p.data[0].T, p.data[len(p.data)-1].T
}

// Greatest index whose block time is <= t. The previous result seeds the next
// call: a repeated or slightly advanced query epoch resolves in O(1), anything
// else falls back to a bisection of the whole block list.
func (p *SvInterpolator) indexHunt(t GTime) (int, error) {
	last := len(p.data) - 1
	if t.Less(p.data[0].T) {
		return 0, fmt.Errorf("%w: %s is before the first data point %s",
			ErrFewDataPoints, t.String(), p.data[0].T.String())
	}
	if i := p.ihunt; i >= 0 && i <= last && p.data[i].T.LessOrEqual(t) {
		if i == last || t.Less(p.data[i+1].T) {
			return i, nil
		}
		// one step ahead covers the common advancing-epoch pattern
		if i+1 == last || t.Less(p.data[i+2].T) {
			p.ihunt = i + 1
			return i + 1, nil
		}
	}
	lo, hi := 0, last
	if p.ihunt > 0 && p.ihunt <= last && p.data[p.ihunt].T.LessOrEqual(t) {
		lo = p.ihunt
	}
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if p.data[mid].T.LessOrEqual(t) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	p.ihunt = lo
	return lo, nil
}

// Interpolate the satellite position [km] at epoch t from the data points
// within maxdiff of t, by a Neville fit per component over the shared time
// axis. perr receives the fit error estimates; pass nil to discard them.
// vel non-nil additionally interpolates the velocity [dm/s] (with estimates
// in verr), and fails if the file carries no velocity records.
//
// Returns ErrFewDataPoints when fewer than mindpts usable blocks lie within
// maxdiff on either side of t.
func (p *SvInterpolator) InterpolateAt(t GTime, pos, perr, vel, verr *[3]float64) error {
	ic, err := p.indexHunt(t)
	if err != nil {
		return err
	}
	maxSec := p.maxDiff.Seconds()
	start, end := ic, ic
	for start > 0 && end-start+1 < p.wsz && t.DiffSec(p.data[start-1].T) <= maxSec {
		start--
	}
	for end < len(p.data)-1 && end-start+1 < p.wsz && p.data[end+1].T.DiffSec(t) <= maxSec {
		end++
	}
	nl, nr := ic-start+1, end-ic
	if t.DiffSec(p.data[ic].T) == 0 {
		// an exact hit brackets the query from both sides
		nr++
	}
	if nl < p.minDpts || nr < p.minDpts {
		return fmt.Errorf("%w: %d before and %d after %s (need %d each)",
			ErrFewDataPoints, nl, nr, t.String(), p.minDpts)
	}

	// times as seconds past the file start epoch, for conditioning
	n := end - start + 1
	for i := 0; i < n; i++ {
		b := &p.data[start+i]
		p.td[i] = b.T.DiffSec(p.t0)
		p.xd[i] = b.State[0]
		p.yd[i] = b.State[1]
		p.zd[i] = b.State[2]
	}
	x := t.DiffSec(p.t0)
	y, dy, err := nevilleInterp3(x, p.td[:n],
		[3][]float64{p.xd[:n], p.yd[:n], p.zd[:n]}, p.ws)
	if err != nil {
		return err
	}
	*pos = y
	if perr != nil {
		*perr = dy
	}

	if vel == nil {
		return nil
	}
	if !p.hasVel {
		return fmt.Errorf("no velocity records for %s in %s", p.id, p.fn)
	}
	for i := 0; i < n; i++ {
		b := &p.data[start+i]
		p.xd[i] = b.State[4]
		p.yd[i] = b.State[5]
		p.zd[i] = b.State[6]
	}
	y, dy, err = nevilleInterp3(x, p.td[:n],
		[3][]float64{p.xd[:n], p.yd[:n], p.zd[:n]}, p.ws)
	if err != nil {
		return err
	}
	*vel = y
	if verr != nil {
		*verr = dy
	}
	return nil
}
