// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gosp3

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHeader(t *testing.T) {
	sp3 := openSp3(t, tinySp3Lines())

	assert.Equal(t, byte('c'), sp3.Version())
	assert.Equal(t, 2164, sp3.StartEpoch().Week)
	assert.InDelta(t, 345600.0, sp3.StartEpoch().Sec, 1e-9)
	assert.Equal(t, 3, sp3.NumEpochs())
	assert.Equal(t, 900*time.Second, sp3.Interval())
	assert.Equal(t, "IGS14", sp3.CrdSys())
	assert.Equal(t, "HLM", sp3.OrbType())
	assert.Equal(t, "IGS", sp3.Agency())
	assert.Equal(t, "GPS", sp3.TimeSys())
	assert.Equal(t, 1, sp3.NumSats())
	assert.Equal(t, []SatType{"G07"}, sp3.Sats())
	assert.True(t, sp3.HasSv("G07"))
	assert.False(t, sp3.HasSv("G08"))
}

func TestReadHeaderMultiSat(t *testing.T) {
	sats := []string{"G07", "G08", "G09", "R01", "E11"}
	sp3 := openSp3(t, append(sp3HeaderLines(1, sats...),
		epochLine(0),
		posLine("G08", 15000.0, -8000.0, 20000.0, 12.3456),
		"EOF",
	))

	assert.Equal(t, 5, sp3.NumSats())
	for _, s := range sats {
		assert.True(t, sp3.HasSv(SatType(s)), s)
	}
}

// Corrupt one header line and check the numbered error that comes back.
func TestReadHeaderErrors(t *testing.T) {
	tests := []struct {
		name     string
		corrupt  func(lines []string)
		wantCode int
		wantErr  error
	}{
		{
			name:     "unsupported version",
			corrupt:  func(l []string) { l[0] = "#a" + l[0][2:] },
			wantCode: 10,
			wantErr:  ErrStructural,
		},
		{
			name:     "non-numeric year",
			corrupt:  func(l []string) { l[0] = l[0][:3] + "20xx" + l[0][7:] },
			wantCode: 11,
			wantErr:  ErrFieldParse,
		},
		{
			name:     "zero epoch count",
			corrupt:  func(l []string) { l[0] = l[0][:32] + "      0" + l[0][39:] },
			wantCode: 17,
			wantErr:  ErrFieldParse,
		},
		{
			name:     "week disagrees with calendar epoch",
			corrupt:  func(l []string) { l[1] = strings.Replace(l[1], "2164", "2165", 1) },
			wantCode: 22,
			wantErr:  ErrCrossValidation,
		},
		{
			name:     "mjd disagrees with calendar epoch",
			corrupt:  func(l []string) { l[1] = strings.Replace(l[1], "59396", "59397", 1) },
			wantCode: 24,
			wantErr:  ErrCrossValidation,
		},
		{
			name:     "missing satellite line",
			corrupt:  func(l []string) { l[2] = "##" + l[2][2:] },
			wantCode: 30,
			wantErr:  ErrStructural,
		},
		{
			name:     "zero satellite count",
			corrupt:  func(l []string) { l[2] = l[2][:3] + "  0" + l[2][6:] },
			wantCode: 31,
			wantErr:  ErrFieldParse,
		},
		{
			name:     "broken accuracy line",
			corrupt:  func(l []string) { l[8] = "+-" + l[8][2:] },
			wantCode: 40,
			wantErr:  ErrStructural,
		},
		{
			name:     "missing time system line",
			corrupt:  func(l []string) { l[12] = "%x" + l[12][2:] },
			wantCode: 50,
			wantErr:  ErrStructural,
		},
		{
			name:     "zero std dev base",
			corrupt:  func(l []string) { l[14] = "%f  0.0000000" + l[14][13:] },
			wantCode: 61,
			wantErr:  ErrFieldParse,
		},
		{
			name:     "missing %i line",
			corrupt:  func(l []string) { l[16] = "%x" + l[16][2:] },
			wantCode: 70,
			wantErr:  ErrStructural,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lines := tinySp3Lines()
			tc.corrupt(lines)
			_, err := NewSp3(writeSp3(t, lines))
			require.Error(t, err)

			var he *HeaderError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tc.wantCode, he.Code)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
