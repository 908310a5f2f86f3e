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

// Package calling matches call-site argument shapes against callee parameter
// shapes. The verdicts are three-valued: a call may certainly succeed,
// certainly fail (wrong arity, receiver mismatch), or depend on information
// the analysis does not track exactly (the length of a spread vararg).
//
// Candidate callees whose match fails are dropped by the caller, not reported
// as errors: a call that can never succeed contributes no call edge.
package calling

import "github.com/awslabs/ar-py-tools/analysis/ir"

// CalleeParams is the parameter shape of a candidate callee.
type CalleeParams struct {
	// HasSelf indicates the callee declares a receiver parameter
	HasSelf bool

	// SelfDoNotCare indicates the receiver is declared but unused, in which
	// case the caller may pass or omit one
	SelfDoNotCare bool

	// NumParams is the number of positional parameters
	NumParams int

	// ParamNames are the source names of the positional parameters
	ParamNames []string

	// NumDefaults is the number of trailing parameters with default values
	NumDefaults int

	// HasVParam indicates a vararg catch-all parameter
	HasVParam bool

	// HasKParam indicates a keyword catch-all parameter
	HasKParam bool
}

// ParamsOf extracts the CalleeParams shape from a code's formal parameters.
func ParamsOf(code *ir.Code) CalleeParams {
	p := code.Parameters()
	return CalleeParams{
		HasSelf:       p.SelfParam != nil,
		SelfDoNotCare: p.SelfParam != nil && p.SelfParam.IsDoNotCare(),
		NumParams:     len(p.Params),
		ParamNames:    p.ParamNames,
		NumDefaults:   len(p.Defaults),
		HasVParam:     p.VParam != nil,
		HasKParam:     p.KParam != nil,
	}
}

// Transfer is a contiguous mapping from caller argument positions to callee
// parameter positions.
type Transfer struct {
	SourceBegin      int
	DestinationBegin int
	Count            int
}

// Pairs iterates the (source, destination) index pairs of the transfer.
func (t Transfer) Pairs(f func(src, dst int)) {
	for i := 0; i < t.Count; i++ {
		f(t.SourceBegin+i, t.DestinationBegin+i)
	}
}

// CallInfo is the result of matching a call site against a candidate callee.
type CallInfo struct {
	// WillSucceed is the overall verdict for the call
	WillSucceed TVL

	// SelfTransfer indicates the receiver argument transfers to the receiver
	// parameter
	SelfTransfer bool

	// ArgParam maps positional arguments onto positional parameters
	ArgParam Transfer

	// ArgVParam maps surplus positional arguments into the vararg tuple
	ArgVParam Transfer

	// Defaults is the set of parameter indices that may take their default
	Defaults map[int]bool
}

func (info *CallInfo) mustFail() *CallInfo {
	info.WillSucceed = False
	info.SelfTransfer = false
	info.ArgParam = Transfer{}
	info.ArgVParam = Transfer{}
	info.Defaults = map[int]bool{}
	return info
}

// isBound reports whether positional parameter i certainly, possibly, or
// never receives a value.
func (info *CallInfo) isBound(i int) TVL {
	switch {
	case i < info.ArgParam.Count:
		return True
	case info.Defaults[i]:
		return True
	default:
		return False
	}
}

// MatchCall matches a call with hasSelf receiver argument and numArgs
// positional arguments against the callee shape. uncertainVArgs indicates the
// call spreads a vararg whose length the analysis does not track exactly;
// such calls can be at best Maybe-successful when they must fill parameters.
func MatchCall(callee CalleeParams, hasSelf bool, numArgs int, uncertainVArgs bool) CallInfo {
	info := CallInfo{
		WillSucceed: Maybe,
		Defaults:    map[int]bool{},
	}

	switch {
	case callee.SelfDoNotCare:
		info.SelfTransfer = false
	case callee.HasSelf && hasSelf:
		info.SelfTransfer = true
	case !callee.HasSelf && !hasSelf:
		info.SelfTransfer = false
	default:
		// Receiver mismatch: method called as a function or vice versa.
		return *info.mustFail()
	}

	clean := True

	arg, param, vparam := 0, 0, 0

	// args -> params
	if count := min(numArgs, callee.NumParams); count > 0 {
		info.ArgParam = Transfer{SourceBegin: arg, DestinationBegin: param, Count: count}
		arg += count
		param += count
	}

	// surplus args -> vparam
	if count := numArgs - arg; count > 0 {
		if !callee.HasVParam {
			// Too many arguments and nowhere to put them.
			return *info.mustFail()
		}
		info.ArgVParam = Transfer{SourceBegin: arg, DestinationBegin: vparam, Count: count}
		arg += count
		vparam += count
	}

	if uncertainVArgs && !callee.HasVParam {
		// The spread arguments may overflow the parameter list.
		clean = clean.And(Maybe)
	}

	// Trailing parameters not certainly bound may take their default.
	defaultOffset := callee.NumParams - callee.NumDefaults
	for i := defaultOffset; i < callee.NumParams; i++ {
		if info.isBound(i).MaybeFalse() {
			info.Defaults[i] = true
		}
	}

	// All positional parameters must be bound one way or another.
	bound := True
	for i := 0; i < callee.NumParams; i++ {
		b := info.isBound(i)
		if b.MustBeFalse() && uncertainVArgs {
			// A spread argument may still land here.
			b = Maybe
		}
		bound = bound.And(b)
	}

	info.WillSucceed = bound.And(clean)
	if info.WillSucceed.MustBeFalse() {
		return *info.mustFail()
	}
	return info
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
