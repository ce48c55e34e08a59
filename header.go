// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gosp3

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Tolerance for the agreement of the header's three start-epoch
// representations (calendar date, GPS week/seconds-of-week, MJD) [s].
const START_EPOCH_TOL = 1e-9

// Parse the SP3-c/d header off the stream, leaving the cursor right before
// the first epoch header record. Every failure carries a numbered
// *HeaderError; see the code ranges on that type.
func (p *Sp3) readHeader() error {
	// ---- first line: version, start epoch, number of epochs
	line, err := p.readLine()
	if err != nil {
		return headerError(10, line, fmt.Errorf("%w: %v", ErrStructural, err))
	}
	if len(line) < 2 || line[0] != '#' {
		return headerError(10, line, fmt.Errorf("%w: no version marker", ErrStructural))
	}
	p.version = line[1]
	if p.version != 'c' && p.version != 'd' {
		return headerError(10, line, fmt.Errorf("%w: unsupported version %q", ErrStructural, p.version))
	}
	year, err := parseIntField(line, 3, 4)
	if err != nil || year == 0 {
		return headerError(11, line, fmt.Errorf("bad year: %w", orZero(err)))
	}
	month, err := parseIntField(line, 8, 2)
	if err != nil || month == 0 {
		return headerError(12, line, fmt.Errorf("bad month: %w", orZero(err)))
	}
	dom, err := parseIntField(line, 11, 2)
	if err != nil || dom == 0 {
		return headerError(13, line, fmt.Errorf("bad day of month: %w", orZero(err)))
	}
	hour, err := parseIntField(line, 14, 2)
	if err != nil {
		return headerError(14, line, fmt.Errorf("bad hour: %w", err))
	}
	minute, err := parseIntField(line, 17, 2)
	if err != nil {
		return headerError(15, line, fmt.Errorf("bad minute: %w", err))
	}
	fsec, err := parseFloatField(line, 20, 11)
	if err != nil {
		return headerError(16, line, fmt.Errorf("bad seconds: %w", err))
	}
	p.startEpoch = *NewGTimeCal(year, month, dom, hour, minute, fsec)
	p.numEpochs, err = parseIntField(line, 32, 7)
	if err != nil || p.numEpochs == 0 {
		return headerError(17, line, fmt.Errorf("bad number of epochs: %w", orZero(err)))
	}
	if len(line) < 60 {
		return headerError(18, line, fmt.Errorf("%w: first line too short", ErrStructural))
	}
	p.crdSys = trimField(line, 46, 5)
	p.orbType = trimField(line, 52, 3)
	p.agency = trimField(line, 56, 4)

	// ---- second line: week/sow, interval, MJD; cross-validate the epoch
	if line, err = p.readLine(); err != nil || len(line) < 2 || line[:2] != "##" {
		return headerError(20, line, fmt.Errorf("%w: no \"##\" line", ErrStructural))
	}
	week, err := parseIntField(line, 3, 4)
	if err != nil || week == 0 {
		return headerError(21, line, fmt.Errorf("bad gps week: %w", orZero(err)))
	}
	sow, err := parseFloatField(line, 8, 15)
	if err != nil {
		return headerError(25, line, fmt.Errorf("bad seconds of week: %w", err))
	}
	if d := p.startEpoch.DiffSec(GTime{Week: week, Sec: sow}); math.Abs(d) > START_EPOCH_TOL {
		return headerError(22, line,
			fmt.Errorf("%w: week/sow off by %e s from the calendar epoch", ErrCrossValidation, d))
	}
	intv, err := parseFloatField(line, 24, 14)
	if err != nil || intv <= 0 {
		return headerError(26, line, fmt.Errorf("bad epoch interval: %w", orZero(err)))
	}
	p.interval = time.Duration(intv * float64(time.Second))
	mjd, err := parseIntField(line, 39, 5)
	if err != nil || mjd == 0 {
		return headerError(23, line, fmt.Errorf("bad mjd: %w", orZero(err)))
	}
	frac, err := parseFloatField(line, 45, 15)
	if err != nil {
		return headerError(27, line, fmt.Errorf("bad fractional day: %w", err))
	}
	if d := (float64(mjd) + frac - p.startEpoch.FMjd()) * 86400.0; math.Abs(d) > START_EPOCH_TOL {
		return headerError(24, line,
			fmt.Errorf("%w: mjd off by %e s from the calendar epoch", ErrCrossValidation, d))
	}

	// ---- satellite id lines ("+ "), 17 ids per line, 5 lines minimum
	if line, err = p.readLine(); err != nil || len(line) < 2 || line[0] != '+' || line[1] != ' ' {
		return headerError(30, line, fmt.Errorf("%w: no satellite id line", ErrStructural))
	}
	numSats, err := parseIntField(line, 3, 3)
	if err != nil || numSats == 0 {
		return headerError(31, line, fmt.Errorf("bad satellite count: %w", orZero(err)))
	}
	p.sats = make([]SatType, 0, numSats)
	linesRead, cidx := 1, 9
	for len(p.sats) < numSats {
		if cidx >= 60 {
			if line, err = p.readLine(); err != nil || len(line) < 1 || line[0] != '+' {
				return headerError(32, line, fmt.Errorf("%w: satellite id line missing", ErrStructural))
			}
			linesRead++
			cidx = 9
		}
		id, ok := field(line, cidx, 3)
		if !ok {
			return headerError(33, line, fmt.Errorf("%w: satellite id at column %d", ErrFieldParse, cidx))
		}
		p.sats = append(p.sats, SatType(id))
		cidx += 3
	}
	for linesRead < 5 {
		if line, err = p.readLine(); err != nil || len(line) < 1 || line[0] != '+' {
			return headerError(34, line, fmt.Errorf("%w: satellite id pad line missing", ErrStructural))
		}
		linesRead++
	}

	// ---- satellite accuracy lines ("++"), not interpreted
	if line, err = p.readLine(); err != nil || len(line) < 2 || line[:2] != "++" {
		return headerError(40, line, fmt.Errorf("%w: no satellite accuracy line", ErrStructural))
	}
	guard := 0
	for {
		b, _ := p.rd.Peek(1)
		if len(b) == 0 || b[0] != '+' {
			break
		}
		if line, err = p.readLine(); err != nil || len(line) < 2 || line[:2] != "++" {
			return headerError(40, line, fmt.Errorf("%w: bad satellite accuracy line", ErrStructural))
		}
		if guard++; guard > MAX_HEADER_LINES {
			return headerError(41, line, fmt.Errorf("%w: runaway accuracy section", ErrStructural))
		}
	}

	// ---- two "%c" lines; the first carries the time system
	if line, err = p.readLine(); err != nil || len(line) < 12 || line[:2] != "%c" {
		return headerError(50, line, fmt.Errorf("%w: no first %%c line", ErrStructural))
	}
	p.timeSys = trimField(line, 9, 3)
	if line, err = p.readLine(); err != nil || len(line) < 2 || line[:2] != "%c" {
		return headerError(51, line, fmt.Errorf("%w: no second %%c line", ErrStructural))
	}

	// ---- two "%f" lines; the first carries the std. deviation bases
	if line, err = p.readLine(); err != nil || len(line) < 2 || line[:2] != "%f" {
		return headerError(60, line, fmt.Errorf("%w: no first %%f line", ErrStructural))
	}
	p.fpbPos, err = parseFloatField(line, 3, 10)
	if err != nil || p.fpbPos == 0 {
		return headerError(61, line, fmt.Errorf("bad position std. dev base: %w", orZero(err)))
	}
	p.fpbClk, err = parseFloatField(line, 14, 12)
	if err != nil || p.fpbClk == 0 {
		return headerError(61, line, fmt.Errorf("bad clock std. dev base: %w", orZero(err)))
	}
	if line, err = p.readLine(); err != nil || len(line) < 2 || line[:2] != "%f" {
		return headerError(65, line, fmt.Errorf("%w: no second %%f line", ErrStructural))
	}

	// ---- two "%i" lines, not interpreted
	for i := 0; i < 2; i++ {
		if line, err = p.readLine(); err != nil || len(line) < 2 || line[:2] != "%i" {
			return headerError(70, line, fmt.Errorf("%w: no %%i line", ErrStructural))
		}
	}

	// ---- comment lines ("/*"), zero or more
	guard = 0
	for {
		b, _ := p.rd.Peek(1)
		if len(b) == 0 || b[0] != '/' {
			break
		}
		if line, err = p.readLine(); err != nil || len(line) < 2 || line[1] != '*' {
			return headerError(80, line, fmt.Errorf("%w: bad comment line", ErrStructural))
		}
		if guard++; guard > MAX_HEADER_LINES {
			return headerError(81, line, fmt.Errorf("%w: runaway comment section", ErrStructural))
		}
	}

	p.endOfHead = p.offset
	PrintD(2, "sp3 header: %s ver=%c epochs=%d sats=%d interval=%v\n",
		p.filename, p.version, p.numEpochs, len(p.sats), p.interval)
	return nil
}

// Trimmed text of a fixed-column window; "" when the line is too short.
func trimField(line string, start, width int) string {
	s, _ := field(line, start, width)
	return strings.TrimSpace(s)
}

// Substitute for a nil error so that zero-value checks can share the %w path.
func orZero(err error) error {
	if err == nil {
		return fmt.Errorf("%w: field is zero", ErrFieldParse)
	}
	return err
}
