// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gosp3

import (
	"math"
	"time"
)

type GTime struct {
	Week int
	Sec  float64
}

func NewGTime(dt time.Time) *GTime {
	t := dt.Unix()
	t -= time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC).Unix() // Elapsed seconds since 1980/1/6 00:00:00
	return &GTime{
		Week: int(t / (3600 * 24 * 7)),
		Sec:  float64(t%(3600*24*7)) + float64(dt.Nanosecond())/1000000000,
	}
}

// Build a GTime from calendar fields with fractional seconds, the way epochs
// appear in SP3 header and epoch lines.
func NewGTimeCal(year, month, day, hour, minute int, sec float64) *GTime {
	isec := math.Floor(sec)
	nsec := int(math.Round((sec - isec) * 1e9))
	return NewGTime(time.Date(year, time.Month(month), day, hour, minute, int(isec), nsec, time.UTC))
}

func (p *GTime) ToTime() time.Time {
	o := time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC).Unix() // GPS time starts from 1980/1/6 00:00:00
	i := int64(math.Trunc(p.Sec))
	t := int64(3600*24*7*p.Week) + i + o
	n := int64((p.Sec - float64(i)) * 1e9)
	return time.Unix(t, n) // Unix time is the elapsed seconds since 1970/1/1 00:00:00
}

func (p *GTime) Less(b GTime) bool {
	if p.Week == b.Week {
		return p.Sec < b.Sec
	}
	return p.Week < b.Week
}

func (p *GTime) LessOrEqual(b GTime) bool {
	if p.Week == b.Week {
		return p.Sec <= b.Sec
	}
	return p.Week < b.Week
}

func (p *GTime) Before(t time.Time) bool {
	return p.Less(*NewGTime(t))
}

func (p *GTime) After(t time.Time) bool {
	return NewGTime(t).Less(*p)
}

// Difference p-b in elapsed seconds.
func (p *GTime) DiffSec(b GTime) float64 {
	return float64(p.Week-b.Week)*(3600*24*7) + p.Sec - b.Sec
}

// Modified Julian Day including the day fraction.
func (p *GTime) FMjd() float64 {
	t := p.ToTime()
	sec := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	return sec/86400.0 + 40587.0 // MJD of 1970/1/1 is 40587
}

// Step forward (or backward) by sec seconds, normalizing the week.
func (p *GTime) AddSec(sec float64) GTime {
	t := GTime{Week: p.Week, Sec: p.Sec + sec}
	for t.Sec >= 3600*24*7 {
		t.Sec -= 3600 * 24 * 7
		t.Week++
	}
	for t.Sec < 0 {
		t.Sec += 3600 * 24 * 7
		t.Week--
	}
	return t
}

// Check whether the (rounded) second value is divisible by sec.
func (p *GTime) Divisible(sec int) bool {
	return int(math.Round(p.Sec))%sec == 0
}

func (p *GTime) String() string {
	return p.ToTime().UTC().Format("2006/01/02 15:04:05.000")
}
