// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gosp3

import "time"

const (
	PI = 3.1415926535897932  // Pi
	Re = 6378137.0           // Earth's radius [m]
	Fe = 1.0 / 298.257223563 // Earth's flattening

	// Bad or absent clock (and clock rate-of-change) values are set to
	// 999999.999999. The six integer nines are required, the fractional
	// nines are optional.
	MISSING_CLK_VALUE = 999999.0

	// No header section may run longer than this many lines.
	MAX_HEADER_LINES = 1000

	// Minimum number of data points required on each side of a query
	// epoch before interpolation is attempted.
	MIN_DPTS_EACH_SIDE = 2
)

// Default maximum distance between a query epoch and a data point used in
// the interpolation (3 minutes plus a second to absorb rounding).
const DEFAULT_MAX_DIFF = (3*60 + 1) * time.Second
