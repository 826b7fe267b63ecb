package quality

import (
	"fmt"

	"github.com/poiesic/geoflow/core"
)

// Required field sets per domain. The missing ratio denominator is
// record count times the size of the domain's set.
var (
	tradeRequired = []string{"country_code", "trade_value", "date", "commodity_code"}
	macroRequired = []string{"country_code", "gdp", "population", "date"}
	envRequired   = []string{"country_code", "epi_score", "date"}
)

// tally accumulates validation counts for one batch.
type tally struct {
	domain        core.Domain
	records       int
	requiredSize  int
	missingCount  int
	missingFields []string
	missingSeen   map[string]bool
	outliers      int
	duplicates    int
	dupSeen       map[string]bool
	issues        []string
}

func newTally(domain core.Domain, records, requiredSize int) *tally {
	return &tally{
		domain:       domain,
		records:      records,
		requiredSize: requiredSize,
		missingSeen:  make(map[string]bool),
		dupSeen:      make(map[string]bool),
	}
}

func (t *tally) missing(index int, field string) {
	t.missingCount++
	if !t.missingSeen[field] {
		t.missingSeen[field] = true
		t.missingFields = append(t.missingFields, field)
	}
	t.issues = append(t.issues, fmt.Sprintf("record %d: missing %s", index, field))
}

func (t *tally) outlier(index int, field string, value float64) {
	t.outliers++
	t.issues = append(t.issues, fmt.Sprintf("record %d: %s %g out of bounds", index, field, value))
}

// duplicate registers a composite key occurrence; every occurrence beyond
// the first counts as a duplicate.
func (t *tally) duplicate(index int, key string) {
	if t.dupSeen[key] {
		t.duplicates++
		t.issues = append(t.issues, fmt.Sprintf("record %d: duplicate key %s", index, key))
		return
	}
	t.dupSeen[key] = true
}

// verdict computes the batch ratios and assigns the quality level.
// A zero-record batch is always Unusable.
func (t *tally) verdict() core.ValidationVerdict {
	v := core.ValidationVerdict{
		Domain:         t.domain,
		Issues:         t.issues,
		MissingFields:  t.missingFields,
		RecordCount:    t.records,
		OutlierCount:   t.outliers,
		DuplicateCount: t.duplicates,
	}

	if t.records == 0 {
		v.Quality = core.QualityUnusable
		v.Issues = append(v.Issues, "batch contains no records")
		return v
	}

	missingRatio := float64(t.missingCount) / float64(t.records*t.requiredSize)
	outlierRatio := float64(t.outliers) / float64(t.records)
	duplicateRatio := float64(t.duplicates) / float64(t.records)

	v.Quality = assignQuality(missingRatio, outlierRatio, duplicateRatio)
	v.IsValid = v.Quality.Usable()
	return v
}

// Validate scores a decoded provider payload for its domain. A payload
// that does not match any known domain shape is reported as Unusable with
// a single top-level issue; validation never returns an error to the
// orchestrator.
func Validate(payload *core.ProviderPayload) core.ValidationVerdict {
	if payload == nil {
		return malformedVerdict(0, "payload is nil")
	}
	switch payload.Domain {
	case core.DomainTrade:
		return ValidateTrade(flattenTrade(payload))
	case core.DomainMacroeconomic:
		return ValidateMacro(flattenMacro(payload))
	case core.DomainEnvironmental:
		return ValidateEnvironmental(flattenEnvironmental(payload))
	default:
		return malformedVerdict(payload.Domain, "payload domain is unknown")
	}
}

func malformedVerdict(domain core.Domain, issue string) core.ValidationVerdict {
	return core.ValidationVerdict{
		Domain:  domain,
		Quality: core.QualityUnusable,
		Issues:  []string{issue},
	}
}

// ValidateTrade validates a flat list of raw trade records.
func ValidateTrade(records []core.RawTradeRecord) core.ValidationVerdict {
	t := newTally(core.DomainTrade, len(records), len(tradeRequired))

	for i, record := range records {
		if core.NormalizeCountryCode(record.CountryCode) == "" {
			t.missing(i, "country_code")
		}
		if record.TradeValue == nil {
			t.missing(i, "trade_value")
		} else if !core.TradeValueInBounds(*record.TradeValue) {
			t.outlier(i, "trade_value", *record.TradeValue)
		}
		if record.Date == "" {
			t.missing(i, "date")
		}
		if record.CommodityCode == "" {
			t.missing(i, "commodity_code")
		}

		key := core.NormalizeCountryCode(record.CountryCode) + "|" + record.Date + "|" + record.CommodityCode
		t.duplicate(i, key)
	}

	return t.verdict()
}

// ValidateMacro validates a flat list of raw macroeconomic records.
func ValidateMacro(records []core.RawMacroRecord) core.ValidationVerdict {
	t := newTally(core.DomainMacroeconomic, len(records), len(macroRequired))

	for i, record := range records {
		if core.NormalizeCountryCode(record.CountryCode) == "" {
			t.missing(i, "country_code")
		}
		if record.GDP == nil {
			t.missing(i, "gdp")
		} else if !core.NonNegative(*record.GDP) {
			t.outlier(i, "gdp", *record.GDP)
		}
		if record.Population == nil {
			t.missing(i, "population")
		} else if !core.NonNegative(*record.Population) {
			t.outlier(i, "population", *record.Population)
		}
		if record.Date == "" {
			t.missing(i, "date")
		}

		key := core.NormalizeCountryCode(record.CountryCode) + "|" + record.Date
		t.duplicate(i, key)
	}

	return t.verdict()
}

// ValidateEnvironmental validates a flat list of raw environmental records.
func ValidateEnvironmental(records []core.RawEnvironmentalRecord) core.ValidationVerdict {
	t := newTally(core.DomainEnvironmental, len(records), len(envRequired))

	for i, record := range records {
		if core.NormalizeCountryCode(record.CountryCode) == "" {
			t.missing(i, "country_code")
		}
		if record.EPIScore == nil {
			t.missing(i, "epi_score")
		} else if !core.ScoreInBounds(*record.EPIScore) {
			t.outlier(i, "epi_score", *record.EPIScore)
		}
		if record.Date == "" {
			t.missing(i, "date")
		}
		// Secondary scores are optional but still bounds-checked when present.
		for _, check := range []struct {
			name  string
			value *float64
		}{
			{"air_quality", record.AirQuality},
			{"water_quality", record.WaterQuality},
			{"biodiversity", record.Biodiversity},
		} {
			if check.value != nil && !core.ScoreInBounds(*check.value) {
				t.outlier(i, check.name, *check.value)
			}
		}

		key := core.NormalizeCountryCode(record.CountryCode) + "|" + record.Date
		t.duplicate(i, key)
	}

	return t.verdict()
}

// flattenTrade collapses a payload's per-country groups into one ordered list.
func flattenTrade(payload *core.ProviderPayload) []core.RawTradeRecord {
	var records []core.RawTradeRecord
	for _, country := range payload.Countries {
		records = append(records, country.Trade...)
	}
	return records
}

func flattenMacro(payload *core.ProviderPayload) []core.RawMacroRecord {
	var records []core.RawMacroRecord
	for _, country := range payload.Countries {
		records = append(records, country.Macro...)
	}
	return records
}

func flattenEnvironmental(payload *core.ProviderPayload) []core.RawEnvironmentalRecord {
	var records []core.RawEnvironmentalRecord
	for _, country := range payload.Countries {
		records = append(records, country.Environmental...)
	}
	return records
}
