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

package core

import "errors"

// Domain validation errors
var (
	// ErrUnknownDomain indicates a Domain value outside the known set.
	ErrUnknownDomain = errors.New("unknown domain")

	// ErrEmptyCountryCode indicates a record with no country code.
	ErrEmptyCountryCode = errors.New("country code cannot be empty")

	// ErrInvalidCountryCode indicates a country code that is not ISO-3166 alpha-3.
	ErrInvalidCountryCode = errors.New("invalid country code")

	// ErrUnparsableDate indicates a date string that matches no accepted layout.
	ErrUnparsableDate = errors.New("unparsable date")

	// ErrValueOutOfBounds indicates a numeric field outside its domain-sane range.
	ErrValueOutOfBounds = errors.New("value out of bounds")

	// ErrEmptyDataset indicates an operation on a dataset with no records.
	ErrEmptyDataset = errors.New("dataset has no records")
)
