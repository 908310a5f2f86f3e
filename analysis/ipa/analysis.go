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

// Package ipa implements a context-sensitive, constraint-based
// inter-procedural points-to and call-graph analysis.
//
// The analysis is a fixpoint computation over a graph of slots (monotonic
// sets of abstract objects) connected by constraints. Call-graph discovery
// and value flow are mutually recursive: resolving a call binds new contexts
// whose constraints feed new values back into call sites. Context
// sensitivity follows the cartesian product of concrete argument types, with
// a megamorphic collapse bounding the number of contexts per code object.
package ipa

import (
	"github.com/awslabs/ar-py-tools/analysis/config"
	"github.com/awslabs/ar-py-tools/analysis/ir"
)

// Analyze runs the full analysis over program, seeding the entry points
// named by cfg and solving to a fixpoint.
func Analyze(program *ir.Program, cfg *config.Config, logger *config.LogGroup) (*Results, error) {
	s := NewState(program, cfg, logger)
	if err := SeedEntryPoints(s); err != nil {
		return nil, err
	}
	return Solve(s)
}

// Solve alternates the top-down and bottom-up passes until a round changes
// nothing, up to the configured bound. A state that still changed on the
// last round yields valid but possibly incomplete results, flagged by
// Results.Converged.
func Solve(s *State) (*Results, error) {
	rounds := s.config.MaxAlternations
	converged := false
	used := 0
	for i := 0; i < rounds; i++ {
		used = i + 1
		before := s.generation
		s.logger.Infof("solver round %d/%d", used, rounds)
		if err := s.TopDown(); err != nil {
			return nil, err
		}
		if err := s.BottomUp(); err != nil {
			return nil, err
		}
		if s.generation == before {
			converged = true
			break
		}
	}
	if !converged {
		s.logger.Warnf("analysis still changing after %d rounds, results may be incomplete", rounds)
	}
	s.logger.Infof("analysis finished: %d contexts, %d unsupported constructs",
		len(s.contextList), len(s.unsupported))
	return &Results{state: s, Converged: converged, Rounds: used}, nil
}
