// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config holds the options of the inter-procedural analysis together with the
// entry point declarations that seed it.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:",inline"`

	sourceFile string

	// EntryPoints lists the functions the analysis starts from, together with
	// the externally possible argument types for each formal parameter.
	EntryPoints []EntryPointSpec `yaml:"entry-points"`
}

// EntryPointSpec declares one analysis entry point. Each element of Args is
// the set of class names that may flow into the corresponding positional
// parameter; an empty set means the parameter receives no external value.
type EntryPointSpec struct {
	// Function is the name of the entry function in the analyzed program
	Function string `yaml:"function"`

	// Args are the candidate class names per positional argument
	Args [][]string `yaml:"args"`

	// SelfArg are the candidate class names for the receiver, when the entry
	// point is a method
	SelfArg []string `yaml:"self-arg"`
}

// Options holds the tunables of the constraint solver.
type Options struct {
	// LogLevel controls the verbosity of the analysis
	LogLevel int `yaml:"log-level"`

	// MaxAlternations is the number of top-down/bottom-up rounds the solver
	// driver runs. A run that still changes during the last round is reported
	// as possibly imprecise rather than converged.
	MaxAlternations int `yaml:"max-alternations"`

	// TypeSplitLimit is the number of distinct concrete types a single
	// argument position may accumulate before the type split collapses to a
	// single wildcard bucket (megamorphic collapse).
	TypeSplitLimit int `yaml:"type-split-limit"`

	// WarnOnCollapse logs a warning every time a type split goes megamorphic
	WarnOnCollapse bool `yaml:"warn-on-collapse"`
}

const (
	// DefaultMaxAlternations is the default number of top-down/bottom-up rounds
	DefaultMaxAlternations = 5

	// DefaultTypeSplitLimit is the default megamorphic collapse threshold
	DefaultTypeSplitLimit = 4
)

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		Options: Options{
			LogLevel:        int(InfoLevel),
			MaxAlternations: DefaultMaxAlternations,
			TypeSplitLimit:  DefaultTypeSplitLimit,
			WarnOnCollapse:  false,
		},
		sourceFile:  "",
		EntryPoints: nil,
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := LoadFromString(string(b))
	if err != nil {
		return nil, err
	}
	cfg.sourceFile = filename
	return cfg, nil
}

// LoadFromString loads a config from a yaml string. Intended for testing.
func LoadFromString(contents string) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal([]byte(contents), cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.MaxAlternations <= 0 {
		cfg.MaxAlternations = DefaultMaxAlternations
	}

	if cfg.TypeSplitLimit <= 0 {
		cfg.TypeSplitLimit = DefaultTypeSplitLimit
	}

	for _, ep := range cfg.EntryPoints {
		if ep.Function == "" {
			return nil, fmt.Errorf("entry point with empty function name")
		}
	}

	return cfg, nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}
