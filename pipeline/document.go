package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/geoflow/core"
)

// Document renders a cleaned dataset into stable, human-readable text for
// embedding. The rendering is deterministic: identical datasets always
// produce identical documents, which keeps vector entry IDs stable.
func Document(dataset *core.CleanedDataset) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s data for %s", dataset.Domain, strings.Join(dataset.Summary.Countries, ", "))

	dr := dataset.Summary.DateRange
	if !dr.From.IsZero() {
		fmt.Fprintf(&b, " covering %s to %s", dr.From.Format("2006-01-02"), dr.To.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, ". %d records", dataset.RecordCount())

	metrics := make([]string, 0, len(dataset.Summary.Totals))
	for metric := range dataset.Summary.Totals {
		metrics = append(metrics, metric)
	}
	slices.Sort(metrics)
	for _, metric := range metrics {
		fmt.Fprintf(&b, ". total %s %.2f", metric, dataset.Summary.Totals[metric])
	}

	if dataset.Domain == core.DomainTrade {
		if commodities := distinctCommodities(dataset.Trade); len(commodities) > 0 {
			fmt.Fprintf(&b, ". commodities %s", strings.Join(commodities, ", "))
		}
	}

	b.WriteString(".")
	return b.String()
}

// distinctCommodities returns the sorted distinct commodity codes in a
// cleaned trade slice.
func distinctCommodities(records []core.TradeRecord) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, r := range records {
		if r.CommodityCode != "" && !seen[r.CommodityCode] {
			seen[r.CommodityCode] = true
			codes = append(codes, r.CommodityCode)
		}
	}
	slices.Sort(codes)
	return codes
}
