package quality

import "github.com/poiesic/geoflow/core"

// qualityBracket holds the exclusive upper bounds a batch's three ratios
// must jointly stay under to earn a quality level.
type qualityBracket struct {
	level     core.QualityLevel
	missing   float64
	outlier   float64
	duplicate float64
}

// Brackets are shared across all three domains and evaluated best-first;
// a batch earns the first bracket all three of its ratios satisfy.
var qualityBrackets = []qualityBracket{
	{core.QualityExcellent, 0.05, 0.02, 0.01},
	{core.QualityGood, 0.10, 0.05, 0.02},
	{core.QualityFair, 0.20, 0.10, 0.05},
	{core.QualityPoor, 0.50, 0.20, 0.10},
}

// assignQuality maps the three batch ratios to the least favorable
// bracket they jointly satisfy.
func assignQuality(missingRatio, outlierRatio, duplicateRatio float64) core.QualityLevel {
	for _, bracket := range qualityBrackets {
		if missingRatio < bracket.missing &&
			outlierRatio < bracket.outlier &&
			duplicateRatio < bracket.duplicate {
			return bracket.level
		}
	}
	return core.QualityUnusable
}
