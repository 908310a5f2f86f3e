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

/*
Package config manages the analysis configuration and logging.

Use [Load](filename) to load a configuration from a specific filename, or
[LoadFromString] for an in-memory document. Use [SetGlobalConfig](filename) to
set filename as the global config, and then [LoadGlobal]() to load it.

A config file is in yaml format. The top-level fields are the fields of
[Config]: the solver options and the entry points the analysis starts from.
For example:

	log-level: 4
	max-alternations: 5
	type-split-limit: 4
	entry-points:
	  - function: main
	    args:
	      - [Request, str]

Every option has a default, so the empty document is a valid configuration
(with no entry points).

The [LogGroup] type provides the leveled loggers the analyses report through;
[NewLogGroup] builds one honoring the configured log-level.
*/
package config
