// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Run configuration file (-c option). Every key matches a command line
// option; options given explicitly on the command line win.
type runConfig struct {
	Sat       string  `yaml:"sat"`
	Ts        string  `yaml:"ts"` // "2006/01/02 15:04:05"
	Te        string  `yaml:"te"`
	Ti        int     `yaml:"ti"`
	RadiusSec float64 `yaml:"radius_sec"`
	MinDpts   int     `yaml:"min_dpts"`
	Out       string  `yaml:"out"`
	Observer  string  `yaml:"observer"` // "lat lon hei", degrees and meters
	NoHeader  bool    `yaml:"no_header"`
	Debug     int     `yaml:"debug"`
}

// Read and parse a run configuration file.
func loadRunConfig(path string) (*runConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run config: %w", err)
	}
	var cfg runConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse run config: %w", err)
	}
	return &cfg, nil
}
