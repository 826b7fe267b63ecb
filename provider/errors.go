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

package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a connector failure.
type ErrorKind int

const (
	// KindNetwork covers connection-level failures (DNS, refused, reset).
	KindNetwork ErrorKind = iota + 1
	// KindTimeout covers deadline and cancellation failures.
	KindTimeout
	// KindDecode covers responses that do not match the payload contract.
	KindDecode
	// KindProvider covers provider-side failures (HTTP 4xx/5xx, error bodies).
	KindProvider
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindDecode:
		return "decode"
	case KindProvider:
		return "provider"
	default:
		return "unknown"
	}
}

// ConnectorError is the typed error value every connector failure is
// captured as. It never escapes as a panic and never aborts a batch.
type ConnectorError struct {
	Source string
	Kind   ErrorKind
	Err    error
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("connector %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *ConnectorError) Unwrap() error {
	return e.Err
}

// NewConnectorError wraps err as a ConnectorError for the given source.
func NewConnectorError(source string, kind ErrorKind, err error) *ConnectorError {
	return &ConnectorError{Source: source, Kind: kind, Err: err}
}

// AsConnectorError extracts a *ConnectorError from err, if present.
func AsConnectorError(err error) (*ConnectorError, bool) {
	var ce *ConnectorError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Configuration errors, fatal at connector construction.
var (
	// ErrBaseURLRequired indicates a connector was built without a base URL.
	ErrBaseURLRequired = errors.New("base URL required")

	// ErrEmptyPayload indicates a provider response with no countries list.
	ErrEmptyPayload = errors.New("payload contains no countries")

	// ErrUnknownShape indicates a provider response that does not match the contract.
	ErrUnknownShape = errors.New("response does not match payload contract")
)
