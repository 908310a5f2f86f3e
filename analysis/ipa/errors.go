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
	"errors"
	"fmt"
	"strings"
)

// ErrInternal marks invariant violations: the front end handed the analysis
// something its contract forbids (e.g. a call resolving to a non-callable
// object). The analysis aborts on these rather than guessing.
var ErrInternal = errors.New("internal analysis invariant violated")

// UnsupportedConstructError records an IR construct the constraint extractor
// does not model. These degrade precision (the affected values are treated
// conservatively) but do not abort the analysis.
type UnsupportedConstructError struct {
	// Code is the function the construct appeared in
	Code string

	// Construct describes the unsupported node
	Construct string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("unsupported construct %s in %s", e.Construct, e.Code)
}

// RecursionError reports a recursive cycle in the invocation graph found by
// the bottom-up pass, which requires callee summaries to be complete before
// their callers are processed and therefore cannot handle cycles.
type RecursionError struct {
	// Path is the chain of context descriptions ending at the repeated one
	Path []string

	// Cycles lists the elementary cycles of the invocation graph, when they
	// were computed
	Cycles [][]string

	// Groups lists the recursive groups (strongly connected components of
	// size two or more, plus self-calling contexts)
	Groups [][]string
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("recursive cycle in call graph: %s", strings.Join(e.Path, " -> "))
}
