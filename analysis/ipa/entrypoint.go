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

	"github.com/awslabs/ar-py-tools/analysis/ir"
)

// EntryArg describes the abstract values the environment may pass at one
// argument position of an entry point.
type EntryArg struct {
	// Classes contribute an external instance each: "some object of this
	// class, allocated outside the program"
	Classes []*ir.Class

	// Objects contribute specific preexisting objects
	Objects []*ir.Object

	// Constants contribute interned constant objects
	Constants []any
}

// BuildEntryPoint seeds a direct call to code from the root context, with
// each argument position holding every value its EntryArg describes. A nil
// self seeds a plain function call.
func BuildEntryPoint(s *State, code *ir.Code, self *EntryArg, args []*EntryArg) {
	root := s.root
	var selfSlot *Slot
	if self != nil {
		selfSlot = s.entrySlot(fmt.Sprintf("<self:%s>", code.Name()), self)
	}
	argSlots := make([]*Slot, len(args))
	for i, arg := range args {
		argSlots[i] = s.entrySlot(fmt.Sprintf("<arg%d:%s>", i, code.Name()), arg)
	}
	site := &ir.DirectCall{Code: code, Args: make([]ir.Expr, len(args))}
	root.dcall(site, code, selfSlot, argSlots, nil, nil)
	s.logger.Infof("entry point %s with %d argument positions", code.Name(), len(args))
}

// entrySlot materializes one argument position in the root context.
func (s *State) entrySlot(name string, arg *EntryArg) *Slot {
	slot := s.root.TempLocal(name)
	for _, cls := range arg.Classes {
		slot.UpdateSingleValue(s.objectName(s.externalType(cls.Instance()), HZ))
	}
	for _, obj := range arg.Objects {
		slot.UpdateSingleValue(s.root.existingName(obj))
	}
	for _, v := range arg.Constants {
		slot.UpdateSingleValue(s.root.existingName(s.program.Constant(v)))
	}
	return slot
}

// SeedEntryPoints builds an entry point for every specification in the
// configuration. Argument values are named either by class (seeding an
// external instance) or by global object.
func SeedEntryPoints(s *State) error {
	for _, ep := range s.config.EntryPoints {
		code := s.program.Code(ep.Function)
		if code == nil {
			return fmt.Errorf("entry point %q: no such function", ep.Function)
		}
		var self *EntryArg
		if len(ep.SelfArg) > 0 {
			arg, err := s.resolveEntryArg(ep.Function, ep.SelfArg)
			if err != nil {
				return err
			}
			self = arg
		}
		args := make([]*EntryArg, len(ep.Args))
		for i, names := range ep.Args {
			arg, err := s.resolveEntryArg(ep.Function, names)
			if err != nil {
				return err
			}
			args[i] = arg
		}
		BuildEntryPoint(s, code, self, args)
	}
	return nil
}

func (s *State) resolveEntryArg(entry string, names []string) (*EntryArg, error) {
	arg := &EntryArg{}
	for _, name := range names {
		if cls := s.program.Class(name); cls != nil {
			arg.Classes = append(arg.Classes, cls)
			continue
		}
		if obj := s.program.Global(name); obj != nil {
			arg.Objects = append(arg.Objects, obj)
			continue
		}
		return nil, fmt.Errorf("entry point %q: unknown class or global %q", entry, name)
	}
	return arg, nil
}
