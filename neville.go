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
)

// Polynomial interpolation through the points (xpts[i], ypts[i]) evaluated at
// x, using Neville's algorithm. dy is the magnitude of the last tableau
// correction, usable as an error estimate of y. ws is caller-owned scratch of
// at least 2*len(xpts) elements, so a hot loop allocates nothing; pass nil to
// let the kernel allocate its own.
//
// Returns ErrNodesTooClose when two abscissas coincide (to machine
// precision), which would divide by zero in the tableau.
func NevilleInterp(x float64, xpts, ypts, ws []float64) (y, dy float64, err error) {
	mm := len(xpts)
	if mm == 0 || len(ypts) < mm {
		return 0, 0, fmt.Errorf("%w: %d x-axis points, %d values", ErrFewDataPoints, mm, len(ypts))
	}
	if ws == nil {
		ws = make([]float64, 2*mm)
	} else if len(ws) < 2*mm {
		return 0, 0, fmt.Errorf("workspace too small: %d < %d", len(ws), 2*mm)
	}
	c, d := ws[:mm], ws[mm:2*mm]

	ns := 0
	dif := math.Abs(x - xpts[0])
	for i := 0; i < mm; i++ {
		if dift := math.Abs(x - xpts[i]); dift < dif {
			ns = i
			dif = dift
		}
		c[i] = ypts[i]
		d[i] = ypts[i]
	}
	y = ypts[ns]
	ns--
	for m := 1; m < mm; m++ {
		for i := 0; i < mm-m; i++ {
			ho := xpts[i] - x
			hp := xpts[i+m] - x
			den := ho - hp
			if den == 0 {
				return 0, 0, fmt.Errorf("%w: xpts[%d] == xpts[%d]", ErrNodesTooClose, i, i+m)
			}
			w := (c[i+1] - d[i]) / den
			d[i] = hp * w
			c[i] = ho * w
		}
		if 2*(ns+1) < mm-m {
			dy = c[ns+1]
		} else {
			dy = d[ns]
			ns--
		}
		y += dy
	}
	return y, math.Abs(dy), nil
}

// Three Neville tableaus in lock step over one shared x axis. The walk order,
// the nearest-point seed and the tie-break path depend only on the abscissas,
// so the three components follow identical paths and the x-axis bookkeeping
// is computed once. ws is caller-owned scratch of at least 6*len(xpts).
func nevilleInterp3(x float64, xpts []float64, ypts [3][]float64, ws []float64) (y, dy [3]float64, err error) {
	mm := len(xpts)
	if mm == 0 {
		return y, dy, fmt.Errorf("%w: empty x axis", ErrFewDataPoints)
	}
	for k := range ypts {
		if len(ypts[k]) < mm {
			return y, dy, fmt.Errorf("%w: component %d has %d values for %d x-axis points",
				ErrFewDataPoints, k, len(ypts[k]), mm)
		}
	}
	if len(ws) < 6*mm {
		return y, dy, fmt.Errorf("workspace too small: %d < %d", len(ws), 6*mm)
	}
	var c, d [3][]float64
	for k := 0; k < 3; k++ {
		c[k] = ws[2*k*mm : (2*k+1)*mm]
		d[k] = ws[(2*k+1)*mm : (2*k+2)*mm]
	}

	ns := 0
	dif := math.Abs(x - xpts[0])
	for i := 0; i < mm; i++ {
		if dift := math.Abs(x - xpts[i]); dift < dif {
			ns = i
			dif = dift
		}
		for k := 0; k < 3; k++ {
			c[k][i] = ypts[k][i]
			d[k][i] = ypts[k][i]
		}
	}
	for k := 0; k < 3; k++ {
		y[k] = ypts[k][ns]
	}
	ns--
	for m := 1; m < mm; m++ {
		for i := 0; i < mm-m; i++ {
			ho := xpts[i] - x
			hp := xpts[i+m] - x
			den := ho - hp
			if den == 0 {
				return y, dy, fmt.Errorf("%w: xpts[%d] == xpts[%d]", ErrNodesTooClose, i, i+m)
			}
			for k := 0; k < 3; k++ {
				w := (c[k][i+1] - d[k][i]) / den
				d[k][i] = hp * w
				c[k][i] = ho * w
			}
		}
		if 2*(ns+1) < mm-m {
			for k := 0; k < 3; k++ {
				dy[k] = c[k][ns+1]
			}
		} else {
			for k := 0; k < 3; k++ {
				dy[k] = d[k][ns]
			}
			ns--
		}
		for k := 0; k < 3; k++ {
			y[k] += dy[k]
		}
	}
	for k := 0; k < 3; k++ {
		dy[k] = math.Abs(dy[k])
	}
	return y, dy, nil
}
