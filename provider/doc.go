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

// Package provider defines the source connector contract for external
// country-data providers and the shared HTTP plumbing used by the
// concrete connectors.
//
// Each connector owns its base URL, credentials, rate-limit policy, and
// request timeout; none of these are shared between connectors. A
// connector never lets a failure escape its boundary: every error is
// returned as a *ConnectorError so the ingestion coordinator can record
// it per-source without aborting the batch.
//
// Concrete connectors live in subpackages (comtrade, worldbank, epi),
// one per provider. The mock subpackage provides a deterministic
// connector for tests.
package provider
