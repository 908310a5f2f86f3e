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
	"strings"

	"github.com/awslabs/ar-py-tools/analysis/ir"
)

// Signature identifies one calling context: a code object plus the concrete
// extended type of every bound argument position. Unbound positions (those
// taking a default) are nil. Signatures are canonical within a State.
type Signature struct {
	code    *ir.Code
	self    *XType
	params  []*XType
	vparams []*XType
	key     string
}

// externalKey is the signature key of the synthetic root context.
const externalKey = "<external>"

func (sig *Signature) Code() *ir.Code { return sig.code }

func (sig *Signature) Self() *XType { return sig.self }

func (sig *Signature) Params() []*XType { return sig.params }

func (sig *Signature) VParams() []*XType { return sig.vparams }

// External reports whether this is the root signature, which has no code.
func (sig *Signature) External() bool { return sig.code == nil }

func (sig *Signature) String() string {
	if sig.External() {
		return externalKey
	}
	var b strings.Builder
	b.WriteString(sig.code.Name())
	b.WriteByte('(')
	first := true
	comma := func() {
		if !first {
			b.WriteString(", ")
		}
		first = false
	}
	if sig.self != nil {
		comma()
		fmt.Fprintf(&b, "self=%s", sig.self)
	}
	for _, p := range sig.params {
		comma()
		if p == nil {
			b.WriteString("<default>")
		} else {
			b.WriteString(p.String())
		}
	}
	for _, v := range sig.vparams {
		comma()
		fmt.Fprintf(&b, "*%s", v)
	}
	b.WriteByte(')')
	return b.String()
}

// signatureKey builds the canonical key. Extended types are interned, so
// their addresses identify them.
func signatureKey(code *ir.Code, self *XType, params, vparams []*XType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%p|%p|", code, self)
	for _, p := range params {
		fmt.Fprintf(&b, "%p,", p)
	}
	b.WriteByte('|')
	for _, v := range vparams {
		fmt.Fprintf(&b, "%p,", v)
	}
	return b.String()
}

// signature interns the signature for the given argument types. The slices
// are copied.
func (s *State) signature(code *ir.Code, self *XType, params, vparams []*XType) *Signature {
	key := signatureKey(code, self, params, vparams)
	if sig, ok := s.signatures[key]; ok {
		return sig
	}
	sig := &Signature{
		code:    code,
		self:    self,
		params:  append([]*XType(nil), params...),
		vparams: append([]*XType(nil), vparams...),
		key:     key,
	}
	s.signatures[key] = sig
	return sig
}

// externalSignature interns the signature of the root context.
func (s *State) externalSignature() *Signature {
	if sig, ok := s.signatures[externalKey]; ok {
		return sig
	}
	sig := &Signature{key: externalKey}
	s.signatures[externalKey] = sig
	return sig
}
