// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package gosp3

import "strconv"

// Type representing a satellite name like "G10", exactly as recorded in the
// SP3 satellite id columns (3 characters).
type SatType string

// Type representing a satellite system like 'G'
type SysType byte

// Extract satellite system from satellite name
func (p *SatType) Sys() SysType {
	if len(*p) == 0 {
		return 0
	}
	return SysType((*p)[0])
}

// Check validity of satellite system. 'I' (NavIC) and 'L' (LEO) appear in
// SP3-d files only.
func (p *SysType) IsValid() bool {
	return *p == 'G' || *p == 'J' || *p == 'E' || *p == 'R' || *p == 'C' ||
		*p == 'S' || *p == 'I' || *p == 'L'
}

// Extract satellite number from satellite name
func (p *SatType) Num() int {
	if len(*p) < 3 {
		return 0
	}
	i, err := strconv.Atoi(string((*p)[1:3]))
	if err != nil {
		return 0
	}
	return i
}
