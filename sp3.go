// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gosp3

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

// The Extended Standard Product 3 Orbit Format (SP3-c/d)
// https://files.igs.org/pub/data/format/sp3c.txt
// https://files.igs.org/pub/data/format/sp3d.pdf
//

// Structure to hold the SP3 data records of one block (one epoch) for one
// satellite.
type Sp3DataBlock struct {
	T     GTime
	State [8]float64 // [X, Y, Z, clk, Vx, Vy, Vz, clk rate]; km and microsec, dm/s and 1e-4 microsec/s
	Sdev  [8]float64 // std. deviations following State; mm and psec, 1e-4 mm/s and 1e-4 psec/s
	Flag  Sp3Flag    // flag for State
}

// SP3-c/d precise ephemeris file reader. An instance owns one stream cursor;
// it is not safe for concurrent use. Open one reader per goroutine, or guard
// every cursor-moving call externally.
type Sp3 struct {
	filename string
	f        *os.File
	rd       *bufio.Reader
	offset   int64 // bytes consumed from the start of the file

	version    byte  // 'c' or 'd'
	startEpoch GTime // start epoch from the first header line
	numEpochs  int   // number of epochs declared in the header
	crdSys     string
	orbType    string
	agency     string
	timeSys    string
	interval   time.Duration // epoch interval
	endOfHead  int64         // stream offset right after the last header line
	sats       []SatType     // satellite ids declared in the header
	fpbPos     float64       // floating point base for position std. dev (mm or 1e-4 mm/s)
	fpbClk     float64       // floating point base for clock std. dev (psec or 1e-4 psec/s)
}

// Open an SP3-c/d file and parse its header. Any header failure is fatal:
// no reader is returned.
func NewSp3(fn string) (*Sp3, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	p := &Sp3{
		filename: fn,
		f:        f,
		rd:       bufio.NewReader(f),
	}
	if err := p.readHeader(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sp3 header of %s: %w", fn, err)
	}
	return p, nil
}

func (p *Sp3) Close() error {
	return p.f.Close()
}

func (p *Sp3) Version() byte           { return p.version }
func (p *Sp3) StartEpoch() GTime       { return p.startEpoch }
func (p *Sp3) NumEpochs() int          { return p.numEpochs }
func (p *Sp3) Interval() time.Duration { return p.interval }
func (p *Sp3) CrdSys() string          { return p.crdSys }
func (p *Sp3) OrbType() string         { return p.orbType }
func (p *Sp3) Agency() string          { return p.agency }
func (p *Sp3) TimeSys() string         { return p.timeSys }
func (p *Sp3) NumSats() int            { return len(p.sats) }

// Return the satellite ids declared in the header, in file order.
func (p *Sp3) Sats() []SatType {
	return slices.Clone(p.sats)
}

// Check whether the given satellite is declared in the header.
func (p *Sp3) HasSv(sat SatType) bool {
	return slices.Contains(p.sats, sat)
}

// Move the cursor back to the first record after the header.
func (p *Sp3) Rewind() error {
	if _, err := p.f.Seek(p.endOfHead, io.SeekStart); err != nil {
		return err
	}
	p.rd.Reset(p.f)
	p.offset = p.endOfHead
	return nil
}

// Read one line off the stream, stripping the line terminator.
func (p *Sp3) readLine() (string, error) {
	s, err := p.rd.ReadString('\n')
	p.offset += int64(len(s))
	if err != nil && len(s) == 0 {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Extract the window [start,start+width) of line, truncated to the physical
// line length. ok is false when the window starts beyond the end of line.
func field(line string, start, width int) (s string, ok bool) {
	if start >= len(line) {
		return "", false
	}
	end := start + width
	if end > len(line) {
		end = len(line)
	}
	return line[start:end], true
}

// Check that the window is entirely blank (or beyond the end of line).
func fieldIsBlank(line string, start, width int) bool {
	s, ok := field(line, start, width)
	if !ok {
		return true
	}
	return strings.TrimSpace(s) == ""
}

func parseIntField(line string, start, width int) (int, error) {
	s, ok := field(line, start, width)
	if !ok {
		return 0, fmt.Errorf("%w: no field at column %d (line %q)", ErrFieldParse, start, line)
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q at column %d", ErrFieldParse, s, start)
	}
	return v, nil
}

func parseFloatField(line string, start, width int) (float64, error) {
	s, ok := field(line, start, width)
	if !ok {
		return 0, fmt.Errorf("%w: no field at column %d (line %q)", ErrFieldParse, start, line)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q at column %d", ErrFieldParse, s, start)
	}
	return v, nil
}

// Resolve an Epoch Header Record line ("*  2021  7  1  0 15  0.00000000").
func resolveEpochLine(line string) (GTime, error) {
	var t GTime
	if len(line) < 2 || line[0] != '*' || line[1] != ' ' {
		return t, fmt.Errorf("%w: expected epoch header, got %q", ErrStructural, line)
	}
	year, err := parseIntField(line, 3, 4)
	if err != nil {
		return t, err
	}
	if year == 0 {
		return t, fmt.Errorf("%w: zero year in epoch line %q", ErrFieldParse, line)
	}
	var date [4]int // month, day, hour, minute
	for i := range date {
		if date[i], err = parseIntField(line, 8+3*i, 2); err != nil {
			return t, err
		}
	}
	fsec, err := parseFloatField(line, 20, 11)
	if err != nil {
		return t, err
	}
	return *NewGTimeCal(year, date[0], date[1], date[2], date[3], fsec), nil
}

// Resolve a Position and Clock Record line for satellite wsat. A record for
// another satellite is consumed without numeric parsing; the block's default
// absence bits already cover it.
func (p *Sp3) parsePositionLine(line string, wsat SatType, block *Sp3DataBlock) error {
	if len(line) < 1 || line[0] != 'P' {
		return fmt.Errorf("%w: expected position record, got %q", ErrStructural, line)
	}
	sat, ok := field(line, 1, 3)
	if !ok {
		return fmt.Errorf("%w: no satellite id in %q", ErrFieldParse, line)
	}
	if SatType(sat) != wsat {
		return nil
	}

	var dvec [4]float64
	for i := range dvec {
		v, err := parseFloatField(line, 4+14*i, 14)
		if err != nil {
			return err
		}
		dvec[i] = v
	}
	block.State[0] = dvec[0] // km
	block.State[1] = dvec[1]
	block.State[2] = dvec[2]
	if dvec[0] == 0 || dvec[1] == 0 || dvec[2] == 0 {
		block.Flag.Set(EVENT_BAD_ABSENT_POSITION)
	} else {
		block.Flag.Clear(EVENT_BAD_ABSENT_POSITION)
	}
	block.State[3] = dvec[3] // microsec
	if dvec[3] >= MISSING_CLK_VALUE {
		block.Flag.Set(EVENT_BAD_ABSENT_CLOCK)
	} else {
		block.Flag.Clear(EVENT_BAD_ABSENT_CLOCK)
	}

	// std. deviations (if any)
	nPos := 0
	for i, off := range [3]int{61, 64, 67} {
		if fieldIsBlank(line, off, 2) {
			continue
		}
		nn, err := parseIntField(line, off, 2)
		if err != nil {
			return err
		}
		block.Sdev[i] = math.Pow(p.fpbPos, float64(nn)) // mm
		nPos++
	}
	if nPos == 3 {
		block.Flag.Set(EVENT_HAS_POS_STDDEV)
	}
	if !fieldIsBlank(line, 70, 3) {
		nn, err := parseIntField(line, 70, 3)
		if err != nil {
			return err
		}
		block.Sdev[3] = math.Pow(p.fpbClk, float64(nn)) // psec
		block.Flag.Set(EVENT_HAS_CLK_STDDEV)
	}

	// status columns
	if len(line) > 74 && line[74] == 'E' {
		block.Flag.Set(EVENT_CLOCK_EVENT)
	}
	if len(line) > 75 && line[75] == 'P' {
		block.Flag.Set(EVENT_CLOCK_PREDICTION)
	}
	if len(line) > 78 && line[78] == 'M' {
		block.Flag.Set(EVENT_MANEUVER)
	}
	if len(line) > 79 && line[79] == 'P' {
		block.Flag.Set(EVENT_ORBIT_PREDICTION)
	}
	return nil
}

// Resolve a Velocity and Clock Rate-of-Change Record line for satellite wsat.
func (p *Sp3) parseVelocityLine(line string, wsat SatType, block *Sp3DataBlock) error {
	if len(line) < 1 || line[0] != 'V' {
		return fmt.Errorf("%w: expected velocity record, got %q", ErrStructural, line)
	}
	sat, ok := field(line, 1, 3)
	if !ok {
		return fmt.Errorf("%w: no satellite id in %q", ErrFieldParse, line)
	}
	if SatType(sat) != wsat {
		return nil
	}

	var dvec [4]float64
	for i := range dvec {
		v, err := parseFloatField(line, 4+14*i, 14)
		if err != nil {
			return err
		}
		dvec[i] = v
	}
	block.State[4] = dvec[0] // dm/s
	block.State[5] = dvec[1]
	block.State[6] = dvec[2]
	if dvec[0] == 0 || dvec[1] == 0 || dvec[2] == 0 {
		block.Flag.Set(EVENT_BAD_ABSENT_VELOCITY)
	} else {
		block.Flag.Clear(EVENT_BAD_ABSENT_VELOCITY)
	}
	block.State[7] = dvec[3] // 1e-4 microsec/s
	if dvec[3] >= MISSING_CLK_VALUE {
		block.Flag.Set(EVENT_BAD_ABSENT_CLOCK_RATE)
	} else {
		block.Flag.Clear(EVENT_BAD_ABSENT_CLOCK_RATE)
	}

	// std. deviations (if any)
	nVel := 0
	for i, off := range [3]int{61, 64, 67} {
		if fieldIsBlank(line, off, 2) {
			continue
		}
		nn, err := parseIntField(line, off, 2)
		if err != nil {
			return err
		}
		block.Sdev[4+i] = math.Pow(p.fpbPos, float64(nn)) // 1e-4 mm/s
		nVel++
	}
	if nVel == 3 {
		block.Flag.Set(EVENT_HAS_VEL_STDDEV)
	}
	if !fieldIsBlank(line, 70, 3) {
		nn, err := parseIntField(line, 70, 3)
		if err != nil {
			return err
		}
		block.Sdev[7] = math.Pow(p.fpbClk, float64(nn)) // 1e-4 psec/s
		block.Flag.Set(EVENT_HAS_CLK_RATE_STDDEV)
	}
	return nil
}

// Assuming the next line to be read is an epoch header line, resolve its
// date without moving the cursor. Returns ErrEndOfData when the next line is
// the EOF marker instead. The cursor is left unchanged in every outcome.
func (p *Sp3) PeekNextEpoch() (GTime, error) {
	var t GTime
	b, err := p.rd.Peek(64)
	if len(b) == 0 {
		return t, fmt.Errorf("%w: unexpected end of stream: %v", ErrStructural, err)
	}
	if b[0] == '*' {
		line := string(b)
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimRight(line, "\r")
		t, err := resolveEpochLine(line)
		if err != nil {
			return t, fmt.Errorf("%w: %w", ErrEpochLine, err)
		}
		return t, nil
	}
	if len(b) >= 3 && string(b[:3]) == "EOF" {
		return t, ErrEndOfData
	}
	return t, fmt.Errorf("%w: %q", ErrUnexpectedLine, string(b))
}

// Read the next data block (epoch header plus all of its records) and, if it
// has a position and/or velocity record for satellite sat, parse it into
// block. Check the block's flag to see which fields were actually parsed;
// a satellite missing from the epoch yields a well-formed all-absent block.
//
// Returns nil on success, ErrEndOfData when the cursor sits at the EOF
// marker, or an error wrapping ErrEpochLine, ErrPositionLine, ErrVelocityLine
// or ErrUnexpectedLine. Record errors do not abort iteration; the decision to
// continue is the caller's.
func (p *Sp3) NextDataBlock(sat SatType, block *Sp3DataBlock) error {
	b, err := p.rd.Peek(3)
	if len(b) == 0 {
		return fmt.Errorf("%w: unexpected end of stream: %v", ErrStructural, err)
	}
	switch {
	case b[0] == '*':
		line, err := p.readLine()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStructural, err)
		}
		t, err := resolveEpochLine(line)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEpochLine, err)
		}
		block.T = t
	case len(b) >= 3 && string(b) == "EOF":
		return ErrEndOfData
	default:
		line, _ := p.readLine()
		return fmt.Errorf("%w: %q", ErrUnexpectedLine, line)
	}

	// default-initialize the block: all fields flagged bad/absent
	block.State = [8]float64{}
	block.Sdev = [8]float64{}
	block.Flag.SetDefaults()

	for {
		b, err = p.rd.Peek(3)
		if len(b) == 0 {
			return fmt.Errorf("%w: unexpected end of stream: %v", ErrStructural, err)
		}
		switch {
		case b[0] == '*':
			return nil
		case b[0] == 'P':
			line, _ := p.readLine()
			if err := p.parsePositionLine(line, sat, block); err != nil {
				return fmt.Errorf("%w: %w", ErrPositionLine, err)
			}
		case b[0] == 'V':
			line, _ := p.readLine()
			if err := p.parseVelocityLine(line, sat, block); err != nil {
				return fmt.Errorf("%w: %w", ErrVelocityLine, err)
			}
		case len(b) >= 3 && string(b) == "EOF":
			// leave the marker in place; the next call reports ErrEndOfData
			return nil
		case len(b) >= 2 && (string(b[:2]) == "EP" || string(b[:2]) == "EV"):
			// correlation records of all satellites must still be consumed
			line, _ := p.readLine()
			PrintD(3, "ignoring correlation record %.2s\n", line)
		default:
			line, _ := p.readLine()
			return fmt.Errorf("%w: %q", ErrUnexpectedLine, line)
		}
	}
}

// Cursor over the data blocks of one satellite.
type Sp3Iterator struct {
	sp3   *Sp3
	id    SatType
	block Sp3DataBlock
}

// Create an iterator positioned at the first data block.
func NewSp3Iterator(sp3 *Sp3, sat SatType) (*Sp3Iterator, error) {
	p := &Sp3Iterator{sp3: sp3, id: sat}
	if err := p.Begin(); err != nil {
		return nil, fmt.Errorf("failed to create sp3 iterator: %w", err)
	}
	return p, nil
}

// Rewind to the first data block.
func (p *Sp3Iterator) Begin() error {
	if err := p.sp3.Rewind(); err != nil {
		return err
	}
	return p.sp3.NextDataBlock(p.id, &p.block)
}

// Read the next data block in.
func (p *Sp3Iterator) Advance() error {
	return p.sp3.NextDataBlock(p.id, &p.block)
}

func (p *Sp3Iterator) DataBlock() *Sp3DataBlock {
	return &p.block
}

func (p *Sp3Iterator) CurrentTime() GTime {
	return p.block.T
}

func (p *Sp3Iterator) PeekNextEpoch() (GTime, error) {
	return p.sp3.PeekNextEpoch()
}

// Position the iterator at the first block whose time is >= t. Rewinds once
// when t lies behind the current block, then advances block by block; the
// scan is bounded by the file length, never recursive. Returns ErrEndOfData
// when t is beyond the last block.
func (p *Sp3Iterator) GotoEpoch(t GTime) error {
	if t.Less(p.block.T) {
		if err := p.Begin(); err != nil {
			return err
		}
	}
	for p.block.T.Less(t) {
		if err := p.Advance(); err != nil {
			return err
		}
	}
	return nil
}
