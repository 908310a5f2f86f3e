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

package ipa

import (
	"fmt"

	"github.com/awslabs/ar-py-tools/analysis/config"
	"github.com/awslabs/ar-py-tools/analysis/ir"
)

// State owns everything the analysis computes: the canonical tables for
// extended types, object names and signatures, the analyzed contexts, and
// the worklist of slots with pending diffs. All interning goes through the
// State, so canonical values compare by pointer for its whole lifetime.
//
// A State is not safe for concurrent use.
type State struct {
	program *ir.Program
	config  *config.Config
	logger  *config.LogGroup

	xtypes     map[xtypeKey]*XType
	objs       map[objectNameKey]*ObjectName
	signatures map[string]*Signature

	contexts    map[string]*Context
	contextList []*Context
	root        *Context

	dirty []*Slot

	// generation counts every observable change: slot growth, new contexts,
	// new invocation edges. Convergence is a round that leaves it unchanged.
	generation uint64

	unsupported []*UnsupportedConstructError
	fatal       error
}

// NewState returns a fresh analysis state over program. The root context is
// created immediately; entry points seed it.
func NewState(program *ir.Program, cfg *config.Config, logger *config.LogGroup) *State {
	s := &State{
		program:    program,
		config:     cfg,
		logger:     logger,
		xtypes:     map[xtypeKey]*XType{},
		objs:       map[objectNameKey]*ObjectName{},
		signatures: map[string]*Signature{},
		contexts:   map[string]*Context{},
	}
	s.root = s.Context(s.externalSignature())
	return s
}

// Program returns the analyzed program.
func (s *State) Program() *ir.Program { return s.program }

// Config returns the analysis configuration.
func (s *State) Config() *config.Config { return s.config }

// Logger returns the log group of the analysis.
func (s *State) Logger() *config.LogGroup { return s.logger }

// Root returns the synthetic external context entry points live in.
func (s *State) Root() *Context { return s.root }

// Contexts returns every context created so far, in creation order.
func (s *State) Contexts() []*Context { return s.contextList }

// Unsupported returns the constructs the extractor could not model.
func (s *State) Unsupported() []*UnsupportedConstructError { return s.unsupported }

// Context returns the canonical context of sig, extracting the code body's
// constraints on first creation.
func (s *State) Context(sig *Signature) *Context {
	if ctx, ok := s.contexts[sig.key]; ok {
		return ctx
	}
	ctx := newContext(s, sig)
	s.contexts[sig.key] = ctx
	s.contextList = append(s.contextList, ctx)
	s.generation++
	if !sig.External() {
		s.logger.Debugf("new context %s", ctx)
		s.extract(ctx)
	}
	return ctx
}

func (s *State) dirtySlot(slot *Slot) {
	s.dirty = append(s.dirty, slot)
	s.generation++
}

// failInternal records a fatal invariant violation. The first one wins; the
// solver aborts at its next checkpoint.
func (s *State) failInternal(err error) {
	s.logger.Errorf("%v", err)
	if s.fatal == nil {
		s.fatal = fmt.Errorf("%v: %w", err, ErrInternal)
	}
}

// updateConstraints drains the worklist, propagating pending diffs until no
// slot is dirty. Termination follows from monotonicity: every propagation
// either delivers new objects or nothing.
func (s *State) updateConstraints() {
	for len(s.dirty) > 0 {
		slot := s.dirty[len(s.dirty)-1]
		s.dirty = s.dirty[:len(s.dirty)-1]
		slot.Propagate()
	}
}

// updateCallGraph gives every context a chance to bind newly resolvable call
// targets, reporting whether any binding happened. The context list may grow
// while it runs; new contexts are picked up in the same sweep.
func (s *State) updateCallGraph() bool {
	changed := false
	for i := 0; i < len(s.contextList); i++ {
		if s.contextList[i].updateCallgraph() {
			changed = true
		}
	}
	return changed
}

// TopDown alternates value propagation and call-graph discovery until both
// are stable or an invariant violation surfaced.
func (s *State) TopDown() error {
	for {
		s.updateConstraints()
		if s.fatal != nil {
			return s.fatal
		}
		if !s.updateCallGraph() {
			return nil
		}
	}
}
