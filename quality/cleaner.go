package quality

import (
	"fmt"
	"sort"
	"time"

	"github.com/poiesic/geoflow/core"
)

// PassVersion identifies the cleaning rule set that produced a dataset.
// Bump it whenever the hard checks or derivations change.
const PassVersion = "1.0"

// summaryBuilder accumulates dataset aggregates while records are cleaned.
type summaryBuilder struct {
	countries map[string]bool
	from      time.Time
	to        time.Time
	totals    map[string]float64
}

func newSummaryBuilder() *summaryBuilder {
	return &summaryBuilder{
		countries: make(map[string]bool),
		totals:    make(map[string]float64),
	}
}

func (b *summaryBuilder) observe(code string, date time.Time, metric string, value float64) {
	b.countries[code] = true
	if b.from.IsZero() || date.Before(b.from) {
		b.from = date
	}
	if b.to.IsZero() || date.After(b.to) {
		b.to = date
	}
	b.totals[metric] += value
}

func (b *summaryBuilder) summary() core.DatasetSummary {
	codes := make([]string, 0, len(b.countries))
	for code := range b.countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return core.DatasetSummary{
		Countries: codes,
		DateRange: core.DateRange{From: b.from, To: b.to},
		Totals:    b.totals,
	}
}

// Clean normalizes a payload's records into a CleanedDataset for its
// domain. Cleaning is attempted regardless of the validation verdict so
// partial data survives; callers must check the verdict before storage
// writes. An unknown domain is the only error condition.
func Clean(payload *core.ProviderPayload) (*core.CleanedDataset, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: nil payload", core.ErrUnknownDomain)
	}
	switch payload.Domain {
	case core.DomainTrade:
		return CleanTrade(flattenTrade(payload)), nil
	case core.DomainMacroeconomic:
		return CleanMacro(flattenMacro(payload)), nil
	case core.DomainEnvironmental:
		return CleanEnvironmental(flattenEnvironmental(payload)), nil
	default:
		return nil, fmt.Errorf("%w: %d", core.ErrUnknownDomain, payload.Domain)
	}
}

// CleanTrade normalizes raw trade records. Hard drops: invalid country
// code, unparsable date, missing or non-positive trade value.
func CleanTrade(records []core.RawTradeRecord) *core.CleanedDataset {
	cleaned := make([]core.TradeRecord, 0, len(records))
	builder := newSummaryBuilder()

	for _, record := range records {
		code := core.NormalizeCountryCode(record.CountryCode)
		if core.ValidateCountryCode(code) != nil {
			continue
		}
		date, err := core.ParseDate(record.Date)
		if err != nil {
			continue
		}
		if record.TradeValue == nil || *record.TradeValue <= 0 {
			continue
		}

		currency := record.Currency
		if currency == "" {
			currency = "USD"
		}

		out := core.TradeRecord{
			CountryCode:   code,
			Date:          date,
			TradeValue:    *record.TradeValue,
			Currency:      currency,
			CommodityCode: record.CommodityCode,
		}
		cleaned = append(cleaned, out)
		builder.observe(code, date, "trade_value", out.TradeValue)
	}

	return &core.CleanedDataset{
		Domain:  core.DomainTrade,
		Trade:   cleaned,
		Summary: builder.summary(),
		Cleaning: core.CleaningMetadata{
			OriginalCount: len(records),
			CleanedCount:  len(cleaned),
			PassVersion:   PassVersion,
		},
	}
}

// CleanMacro normalizes raw macroeconomic records. Hard drops: invalid
// country code, unparsable date, missing or non-positive GDP. GDP per
// capita is derived when population is positive.
func CleanMacro(records []core.RawMacroRecord) *core.CleanedDataset {
	cleaned := make([]core.MacroRecord, 0, len(records))
	builder := newSummaryBuilder()

	for _, record := range records {
		code := core.NormalizeCountryCode(record.CountryCode)
		if core.ValidateCountryCode(code) != nil {
			continue
		}
		date, err := core.ParseDate(record.Date)
		if err != nil {
			continue
		}
		if record.GDP == nil || *record.GDP <= 0 {
			continue
		}

		out := core.MacroRecord{
			CountryCode: code,
			Date:        date,
			GDP:         *record.GDP,
		}
		if record.Population != nil && *record.Population > 0 {
			out.Population = *record.Population
			out.GDPPerCapita = out.GDP / out.Population
		}
		if record.Inflation != nil {
			out.Inflation = *record.Inflation
		}
		if record.Unemployment != nil {
			out.Unemployment = *record.Unemployment
		}

		cleaned = append(cleaned, out)
		builder.observe(code, date, "gdp", out.GDP)
	}

	return &core.CleanedDataset{
		Domain:  core.DomainMacroeconomic,
		Macro:   cleaned,
		Summary: builder.summary(),
		Cleaning: core.CleaningMetadata{
			OriginalCount: len(records),
			CleanedCount:  len(cleaned),
			PassVersion:   PassVersion,
		},
	}
}

// CleanEnvironmental normalizes raw environmental records. Hard drops:
// invalid country code, unparsable date, missing or non-positive EPI
// score. Secondary scores are clamped to [0, 100] when present.
func CleanEnvironmental(records []core.RawEnvironmentalRecord) *core.CleanedDataset {
	cleaned := make([]core.EnvironmentalRecord, 0, len(records))
	builder := newSummaryBuilder()

	for _, record := range records {
		code := core.NormalizeCountryCode(record.CountryCode)
		if core.ValidateCountryCode(code) != nil {
			continue
		}
		date, err := core.ParseDate(record.Date)
		if err != nil {
			continue
		}
		if record.EPIScore == nil || *record.EPIScore <= 0 {
			continue
		}

		out := core.EnvironmentalRecord{
			CountryCode: code,
			Date:        date,
			EPIScore:    clampScore(*record.EPIScore),
		}
		if record.AirQuality != nil {
			out.AirQuality = clampScore(*record.AirQuality)
		}
		if record.WaterQuality != nil {
			out.WaterQuality = clampScore(*record.WaterQuality)
		}
		if record.Biodiversity != nil {
			out.Biodiversity = clampScore(*record.Biodiversity)
		}

		cleaned = append(cleaned, out)
		builder.observe(code, date, "epi_score", out.EPIScore)
	}

	return &core.CleanedDataset{
		Domain:        core.DomainEnvironmental,
		Environmental: cleaned,
		Summary:       builder.summary(),
		Cleaning: core.CleaningMetadata{
			OriginalCount: len(records),
			CleanedCount:  len(cleaned),
			PassVersion:   PassVersion,
		},
	}
}

func clampScore(value float64) float64 {
	if value < core.ScoreMin {
		return core.ScoreMin
	}
	if value > core.ScoreMax {
		return core.ScoreMax
	}
	return value
}
