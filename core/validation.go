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

import (
	"fmt"
	"strings"
	"time"
)

// Domain-sane numeric bounds. Values outside these ranges are counted as
// outliers during validation and dropped during cleaning when they fail
// the hard structural checks.
const (
	// MaxTradeValue is the upper bound for a single trade value.
	MaxTradeValue = 1e12

	// ScoreMin and ScoreMax bound environmental scores (EPI, air, water, biodiversity).
	ScoreMin = 0.0
	ScoreMax = 100.0
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// NormalizeCountryCode trims and upper-cases a country code.
func NormalizeCountryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCountryCode checks that a code normalizes to ISO-3166 alpha-3 shape:
// exactly three ASCII letters.
func ValidateCountryCode(code string) error {
	normalized := NormalizeCountryCode(code)
	if normalized == "" {
		return ErrEmptyCountryCode
	}
	if len(normalized) != 3 {
		return fmt.Errorf("%w: %q", ErrInvalidCountryCode, code)
	}
	for _, r := range normalized {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: %q", ErrInvalidCountryCode, code)
		}
	}
	return nil
}

// ParseDate parses a record date into a canonical calendar time (UTC).
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrUnparsableDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableDate, value)
}

// TradeValueInBounds reports whether a trade value is within [0, MaxTradeValue].
func TradeValueInBounds(value float64) bool {
	return value >= 0 && value <= MaxTradeValue
}

// ScoreInBounds reports whether an environmental score is within [ScoreMin, ScoreMax].
func ScoreInBounds(value float64) bool {
	return value >= ScoreMin && value <= ScoreMax
}

// NonNegative reports whether a macroeconomic magnitude (GDP, population) is >= 0.
func NonNegative(value float64) bool {
	return value >= 0
}
