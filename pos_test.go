// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gosp3

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLHXYZRoundTrip(t *testing.T) {
	llh := PosLLH{Lat: ToRad(35.73101206), Lon: ToRad(139.7396917), Hei: 80.33}
	xyz := llh.ToXYZ()
	back := xyz.ToLLH()
	assert.InDelta(t, llh.Lat, back.Lat, 1e-11)
	assert.InDelta(t, llh.Lon, back.Lon, 1e-11)
	assert.InDelta(t, llh.Hei, back.Hei, 1e-4)
}

func TestPosLLHSet(t *testing.T) {
	var llh PosLLH
	require.NoError(t, llh.Set("35.73101206 139.7396917 80.33"))
	assert.InDelta(t, ToRad(35.73101206), llh.Lat, 1e-12)
	assert.InDelta(t, ToRad(139.7396917), llh.Lon, 1e-12)
	assert.InDelta(t, 80.33, llh.Hei, 1e-9)

	assert.Error(t, llh.Set("1 2"))
	assert.Error(t, llh.Set("a b c"))
}

func TestElevationAzimuth(t *testing.T) {
	usr := PosLLH{Lat: ToRad(35.0), Lon: ToRad(139.0), Hei: 0}

	// a target straight above the observer sits at 90 deg elevation
	up := PosLLH{Lat: usr.Lat, Lon: usr.Lon, Hei: 20200e3}
	sat := up.ToXYZ()
	assert.InDelta(t, math.Pi/2, usr.Elevation(sat), 1e-6)

	// a target due north of the observer sits near 0 deg azimuth
	north := PosLLH{Lat: usr.Lat + ToRad(1.0), Lon: usr.Lon, Hei: 0}
	assert.InDelta(t, 0.0, usr.Azimuth(north.ToXYZ()), 1e-2)
	assert.InDelta(t, 0.0, ToDeg(usr.Elevation(north.ToXYZ())), 2.0)
}

func TestSatType(t *testing.T) {
	s := SatType("G07")
	assert.Equal(t, SysType('G'), s.Sys())
	assert.Equal(t, 7, s.Num())

	sys := s.Sys()
	assert.True(t, sys.IsValid())
	bad := SysType('X')
	assert.False(t, bad.IsValid())

	empty := SatType("")
	assert.Equal(t, SysType(0), empty.Sys())
	assert.Equal(t, 0, empty.Num())
}
