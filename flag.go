// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gosp3

// Events that can be recorded for an SP3 data record. A record may be marked
// with several events (or none). The constants are bit masks, so multiple
// events can be OR-ed together and applied in one call.
type Sp3Event uint16

const (
	// Bad or absent positional values are set to 0.000000 in the file.
	EVENT_BAD_ABSENT_POSITION Sp3Event = 1 << iota

	// Bad or absent clock values are set to 999999.999999.
	EVENT_BAD_ABSENT_CLOCK

	// Column 75 of a position record is the Clock Event Flag ('E' or blank).
	// 'E' denotes a discontinuity in the satellite clock correction between
	// the previous epoch and the current one.
	EVENT_CLOCK_EVENT

	// Column 76 is the Clock Correction Prediction Flag ('P' or blank).
	// 'P' means the clock correction at this epoch is predicted, blank that
	// it is observed.
	EVENT_CLOCK_PREDICTION

	// Column 79 is the Orbit Maneuver Flag ('M' or blank). 'M' means a
	// maneuver took place between the previous epoch and the current one.
	EVENT_MANEUVER

	// Column 80 is the Orbit Prediction Flag ('P' or blank). 'P' means the
	// satellite position at this epoch is predicted.
	EVENT_ORBIT_PREDICTION

	// Record carries valid position std. deviations (all three axes).
	EVENT_HAS_POS_STDDEV

	// Record carries a valid clock std. deviation.
	EVENT_HAS_CLK_STDDEV

	// Bad or absent velocity values are set to 0.000000 in the file.
	EVENT_BAD_ABSENT_VELOCITY

	// Bad or absent clock rate-of-change values.
	EVENT_BAD_ABSENT_CLOCK_RATE

	// Record carries valid velocity std. deviations (all three axes).
	EVENT_HAS_VEL_STDDEV

	// Record carries a valid clock rate-of-change std. deviation.
	EVENT_HAS_CLK_RATE_STDDEV
)

// A flag holding all events recorded for one SP3 data record.
type Sp3Flag struct {
	bits Sp3Event
}

// Mark the flag with one event, or with several OR-ed together.
func (p *Sp3Flag) Set(e Sp3Event) {
	p.bits |= e
}

// Un-mark one event (or several OR-ed together).
func (p *Sp3Flag) Clear(e Sp3Event) {
	p.bits &^= e
}

// Check whether every event in e is set.
func (p *Sp3Flag) IsSet(e Sp3Event) bool {
	return p.bits&e == e
}

// Clear all events.
func (p *Sp3Flag) Reset() {
	p.bits = 0
}

// Check that no event is set.
func (p *Sp3Flag) IsClean() bool {
	return p.bits == 0
}

// Reset, then mark every field as bad/absent. Fields are cleared back to
// valid one by one as they are actually parsed from a record.
func (p *Sp3Flag) SetDefaults() {
	p.Reset()
	p.Set(EVENT_BAD_ABSENT_POSITION | EVENT_BAD_ABSENT_CLOCK |
		EVENT_BAD_ABSENT_VELOCITY | EVENT_BAD_ABSENT_CLOCK_RATE)
}
