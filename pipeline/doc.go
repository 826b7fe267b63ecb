// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pipeline orchestrates one processing run end to end.
//
// A run fetches every configured source concurrently, validates and cleans
// each domain's records, renders the cleaned dataset into a document,
// embeds it, and writes to the vector and graph stores concurrently. Both
// stores receive the same processing timestamp so a run's entries line up
// across stores.
//
// Failures are isolated per stage and per store: a failed source, an
// invalid batch, or a failed store write is recorded in the processing
// report and never aborts the run. Only constructor-time configuration
// errors and context cancellation between stages are returned as errors.
package pipeline
