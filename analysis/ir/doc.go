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

// Package ir defines the intermediate representation the analyses consume: a
// program of classes, objects and function bodies (Code), where each body is a
// tree of statement and expression variants.
//
// The IR is the contract between a front end (parser/decompiler, not part of
// this repository) and the analyses. The [Builder] constructs programs in
// memory; tests and entry-point seeding use it directly.
//
// Statements and expressions are sealed interfaces: every variant lives in
// this package, so a consumer switching over [Stmt] or [Expr] can enumerate
// all cases. Consumers are expected to treat an unknown variant as an
// unsupported construct rather than ignore it.
package ir
