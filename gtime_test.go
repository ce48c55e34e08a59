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
)

func TestNewGTimeCal(t *testing.T) {
	// 2021/07/01 00:00:00 UTC is GPS week 2164, 345600 s into the week
	gt := NewGTimeCal(2021, 7, 1, 0, 0, 0.0)
	assert.Equal(t, 2164, gt.Week)
	assert.InDelta(t, 345600.0, gt.Sec, 1e-9)

	// fractional seconds survive
	gt = NewGTimeCal(2021, 7, 1, 0, 0, 30.125)
	assert.InDelta(t, 345630.125, gt.Sec, 1e-9)
}

func TestGTimeRoundTrip(t *testing.T) {
	tt := time.Date(2021, 7, 1, 12, 34, 56, 0, time.UTC)
	gt := NewGTime(tt)
	assert.True(t, gt.ToTime().Equal(tt))
}

func TestFMjd(t *testing.T) {
	gt := NewGTimeCal(2021, 7, 1, 0, 0, 0.0)
	assert.InDelta(t, 59396.0, gt.FMjd(), 1e-9)

	gt = NewGTimeCal(2021, 7, 1, 12, 0, 0.0)
	assert.InDelta(t, 59396.5, gt.FMjd(), 1e-9)
}

func TestDiffSec(t *testing.T) {
	a := GTime{Week: 2164, Sec: 345600}
	b := GTime{Week: 2164, Sec: 345900}
	assert.InDelta(t, -300.0, a.DiffSec(b), 1e-9)
	assert.InDelta(t, 300.0, b.DiffSec(a), 1e-9)

	// across a week boundary
	c := GTime{Week: 2165, Sec: 100}
	d := GTime{Week: 2164, Sec: 604700}
	assert.InDelta(t, 200.0, c.DiffSec(d), 1e-9)
}

func TestAddSec(t *testing.T) {
	a := GTime{Week: 2164, Sec: 604000}
	b := a.AddSec(1000)
	assert.Equal(t, 2165, b.Week)
	assert.InDelta(t, 200.0, b.Sec, 1e-9)

	c := b.AddSec(-1000)
	assert.Equal(t, 2164, c.Week)
	assert.InDelta(t, 604000.0, c.Sec, 1e-9)
}

func TestLessAndDivisible(t *testing.T) {
	a := GTime{Week: 2164, Sec: 345600}
	b := GTime{Week: 2164, Sec: 345600}
	assert.False(t, a.Less(b))
	assert.True(t, a.LessOrEqual(b))
	assert.True(t, a.Less(b.AddSec(0.001)))
	prev := GTime{Week: 2163, Sec: 604799}
	assert.True(t, prev.Less(a))

	assert.True(t, a.Divisible(900))
	half := a.AddSec(450)
	assert.False(t, half.Divisible(900))
}
