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
)

var (
	// Clean end of data; terminates iteration, not an error condition.
	ErrEndOfData = errors.New("end of data")

	// A line does not match the prefix/layout expected at this point of the
	// file grammar.
	ErrStructural = errors.New("structural parse error")

	// A fixed-column numeric field is non-numeric, truncated or out of range.
	ErrFieldParse = errors.New("field parse error")

	// The header's time representations (calendar vs GPS week/seconds-of-week
	// vs MJD) disagree beyond tolerance.
	ErrCrossValidation = errors.New("start epoch cross-validation failed")

	// A body line matches none of the known record tags.
	ErrUnexpectedLine = errors.New("unexpected record line")

	// Failure while resolving an epoch header record line.
	ErrEpochLine = errors.New("bad epoch header line")

	// Failure while resolving a position and clock record line.
	ErrPositionLine = errors.New("bad position record line")

	// Failure while resolving a velocity and clock rate-of-change record line.
	ErrVelocityLine = errors.New("bad velocity record line")

	// Too few data points around the query epoch to interpolate.
	ErrFewDataPoints = errors.New("too few data points to interpolate")

	// Two interpolation abscissas coincide (division by zero in the tableau).
	ErrNodesTooClose = errors.New("x-axis points too close to interpolate")
)

// Error raised while parsing the file header. Code ranges follow the header
// grammar sections:
//
//	10-19 first line (version, calendar epoch, epoch count)
//	20-29 second line (week/seconds-of-week, interval, MJD, cross-validation)
//	30-39 satellite id lines
//	40-49 satellite accuracy lines
//	50-59 %c time-system lines
//	60-69 %f exponent-base lines
//	70-79 %i lines
//	80-89 comment lines
type HeaderError struct {
	Code int
	Line string
	Err  error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("sp3 header error %d: %v (line %q)", e.Code, e.Err, e.Line)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}

func headerError(code int, line string, err error) *HeaderError {
	return &HeaderError{Code: code, Line: line, Err: err}
}
