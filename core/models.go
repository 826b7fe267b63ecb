package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing so identical content
// produces identical IDs across runs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Domain identifies one of the country-data record schemas.
type Domain int

const (
	// DomainTrade covers bilateral trade flow records.
	DomainTrade Domain = iota + 1
	// DomainMacroeconomic covers GDP, population and related indicators.
	DomainMacroeconomic
	// DomainEnvironmental covers EPI and environmental quality scores.
	DomainEnvironmental
)

// Domains lists all known domains in a stable order.
var Domains = []Domain{DomainTrade, DomainMacroeconomic, DomainEnvironmental}

func (d Domain) String() string {
	switch d {
	case DomainTrade:
		return "trade"
	case DomainMacroeconomic:
		return "macroeconomic"
	case DomainEnvironmental:
		return "environmental"
	default:
		return "unknown"
	}
}

// QualityLevel is a five-point ordinal assessment of a batch's fitness
// for storage. Higher values are better.
type QualityLevel int

const (
	QualityUnusable QualityLevel = iota
	QualityPoor
	QualityFair
	QualityGood
	QualityExcellent
)

func (q QualityLevel) String() string {
	switch q {
	case QualityExcellent:
		return "excellent"
	case QualityGood:
		return "good"
	case QualityFair:
		return "fair"
	case QualityPoor:
		return "poor"
	default:
		return "unusable"
	}
}

// Usable reports whether data at this quality level may be written to storage.
func (q QualityLevel) Usable() bool {
	return q >= QualityFair
}

// RawTradeRecord is a trade record as decoded from a provider payload.
// Numeric fields are pointers so the validator can distinguish a missing
// field from a zero value; dates stay strings until the cleaning pass.
type RawTradeRecord struct {
	CountryCode   string   `json:"country_code"`
	Date          string   `json:"date"`
	TradeValue    *float64 `json:"trade_value"`
	Currency      string   `json:"currency"`
	CommodityCode string   `json:"commodity_code"`
}

// RawMacroRecord is a macroeconomic record as decoded from a provider payload.
type RawMacroRecord struct {
	CountryCode  string   `json:"country_code"`
	Date         string   `json:"date"`
	GDP          *float64 `json:"gdp"`
	Population   *float64 `json:"population"`
	Inflation    *float64 `json:"inflation"`
	Unemployment *float64 `json:"unemployment"`
}

// RawEnvironmentalRecord is an environmental record as decoded from a provider payload.
type RawEnvironmentalRecord struct {
	CountryCode  string   `json:"country_code"`
	Date         string   `json:"date"`
	EPIScore     *float64 `json:"epi_score"`
	AirQuality   *float64 `json:"air_quality"`
	WaterQuality *float64 `json:"water_quality"`
	Biodiversity *float64 `json:"biodiversity"`
}

// CountryData groups the raw records a provider returned for one country.
// Only the slice matching the provider's domain is populated.
type CountryData struct {
	Code          string                   `json:"code"`
	Name          string                   `json:"name"`
	Trade         []RawTradeRecord         `json:"trade,omitempty"`
	Macro         []RawMacroRecord         `json:"macroeconomic,omitempty"`
	Environmental []RawEnvironmentalRecord `json:"environmental,omitempty"`
}

// ProviderPayload is the decoded response of one connector fetch.
type ProviderPayload struct {
	Source    string        `json:"source"`
	Domain    Domain        `json:"-"`
	Timestamp time.Time     `json:"timestamp"`
	Countries []CountryData `json:"countries"`
}

// TradeRecord is a cleaned, canonical trade record.
type TradeRecord struct {
	CountryCode   string
	Date          time.Time
	TradeValue    float64
	Currency      string
	CommodityCode string
}

// MacroRecord is a cleaned, canonical macroeconomic record.
// GDPPerCapita is derived during cleaning when population is positive.
type MacroRecord struct {
	CountryCode  string
	Date         time.Time
	GDP          float64
	Population   float64
	Inflation    float64
	Unemployment float64
	GDPPerCapita float64
}

// EnvironmentalRecord is a cleaned, canonical environmental record.
type EnvironmentalRecord struct {
	CountryCode  string
	Date         time.Time
	EPIScore     float64
	AirQuality   float64
	WaterQuality float64
	Biodiversity float64
}

// ValidationVerdict is the immutable outcome of validating one raw batch.
// It is data, not an error: callers inspect IsValid before storage writes.
type ValidationVerdict struct {
	Domain         Domain
	IsValid        bool
	Quality        QualityLevel
	Issues         []string
	MissingFields  []string
	RecordCount    int
	OutlierCount   int
	DuplicateCount int
}

// DateRange is a closed date interval covered by a dataset.
type DateRange struct {
	From time.Time
	To   time.Time
}

// DatasetSummary holds aggregates computed during cleaning.
type DatasetSummary struct {
	Countries []string // distinct, sorted country codes
	DateRange DateRange
	Totals    map[string]float64 // primary-metric sums keyed by field name
}

// CleaningMetadata records what the cleaning pass did.
type CleaningMetadata struct {
	OriginalCount int
	CleanedCount  int
	PassVersion   string
}

// CleanedDataset is the ordered output of one domain's cleaning pass.
// Exactly one record slice is populated, matching Domain. The dataset is
// owned by the pipeline for the lifetime of a run and never mutated after
// handoff to the store adapters.
type CleanedDataset struct {
	Domain        Domain
	Trade         []TradeRecord
	Macro         []MacroRecord
	Environmental []EnvironmentalRecord
	Summary       DatasetSummary
	Cleaning      CleaningMetadata
}

// RecordCount returns the number of cleaned records in the dataset.
func (d *CleanedDataset) RecordCount() int {
	switch d.Domain {
	case DomainTrade:
		return len(d.Trade)
	case DomainMacroeconomic:
		return len(d.Macro)
	case DomainEnvironmental:
		return len(d.Environmental)
	default:
		return 0
	}
}

// VectorMetadata is the filterable metadata attached to a vector entry.
type VectorMetadata struct {
	Countries   []string
	DateFrom    time.Time
	DateTo      time.Time
	RecordCount int
	ProcessedAt time.Time
}

// VectorEntry is one embedded document in the vector store.
// Id is a deterministic content hash of domain, document, and processing
// timestamp, so a rewrite of the same batch lands on the same key.
type VectorEntry struct {
	Id       ID
	Domain   Domain
	Vector   []float32
	Document string
	Metadata VectorMetadata
}

// VectorEntryID computes the deterministic ID for a vector entry.
func VectorEntryID(domain Domain, document string, processedAt time.Time) ID {
	return IDFromContent(domain.String() + "|" + document + "|" + processedAt.UTC().Format(time.RFC3339Nano))
}

// NodeLabel types a graph node.
type NodeLabel int

const (
	// NodeCountry is the long-lived node shared across all runs,
	// keyed by ISO-3166 alpha-3 code.
	NodeCountry NodeLabel = iota + 1
	NodeTradeData
	NodeEconomicData
	NodeEnvironmentalData
	NodeCommodity
)

func (l NodeLabel) String() string {
	switch l {
	case NodeCountry:
		return "Country"
	case NodeTradeData:
		return "TradeData"
	case NodeEconomicData:
		return "EconomicData"
	case NodeEnvironmentalData:
		return "EnvironmentalData"
	case NodeCommodity:
		return "Commodity"
	default:
		return "Unknown"
	}
}

// DataNodeLabel returns the data-node label for a domain.
func DataNodeLabel(d Domain) NodeLabel {
	switch d {
	case DomainTrade:
		return NodeTradeData
	case DomainMacroeconomic:
		return NodeEconomicData
	case DomainEnvironmental:
		return NodeEnvironmentalData
	default:
		return 0
	}
}

// RelType types a directed graph relationship.
type RelType int

const (
	RelHasTradeData RelType = iota + 1
	RelHasEconomicData
	RelHasEnvironmentalData
	RelTradesIn
	RelCorrelatesWith
)

func (t RelType) String() string {
	switch t {
	case RelHasTradeData:
		return "HAS_TRADE_DATA"
	case RelHasEconomicData:
		return "HAS_ECONOMIC_DATA"
	case RelHasEnvironmentalData:
		return "HAS_ENVIRONMENTAL_DATA"
	case RelTradesIn:
		return "TRADES_IN"
	case RelCorrelatesWith:
		return "CORRELATES_WITH"
	default:
		return "UNKNOWN"
	}
}

// DataRelType returns the Country→data-node relationship type for a domain.
func DataRelType(d Domain) RelType {
	switch d {
	case DomainTrade:
		return RelHasTradeData
	case DomainMacroeconomic:
		return RelHasEconomicData
	case DomainEnvironmental:
		return RelHasEnvironmentalData
	default:
		return 0
	}
}

// GraphNode is a typed node in the relationship graph.
// Key is unique within a label: the country code for Country nodes, the
// commodity code for Commodity nodes, and a content hash for data nodes.
type GraphNode struct {
	Id         ID
	Label      NodeLabel
	Key        string
	Properties map[string]string
	Numeric    map[string]float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GraphEdge is a typed, directed relationship between two nodes.
// Properties carry optional scalars such as a correlation coefficient.
type GraphEdge struct {
	Id         ID
	Type       RelType
	From       ID
	To         ID
	Properties map[string]float64
	CreatedAt  time.Time
}

// DomainReport is the per-domain slice of a processing report.
type DomainReport struct {
	Source             string
	Verdict            ValidationVerdict
	CleanedRecordCount int
	EmbeddingID        ID
	VectorError        string
	GraphRelationships int
	GraphError         string
}

// ProcessingReport is the unified output of one pipeline run. It always
// lists which sources, domains, and stores succeeded or failed so
// consumers can retry only the failed slice.
type ProcessingReport struct {
	BatchID      string
	ProcessedAt  time.Time
	Countries    []string
	SourceErrors map[string]string
	Domains      map[Domain]*DomainReport
}
