// Package clusters enriches the analyzer's raw cluster list with
// member statistics, pairwise similarity matrices and a risk
// classification.
package clusters

import (
	"github.com/rs/zerolog"

	"github.com/avasile/crosscheck/pkg/analyzer/comparisons"
	"github.com/avasile/crosscheck/pkg/analyzer/submissions"
	"github.com/avasile/crosscheck/pkg/artifact"
)

// Risk levels and the review actions they recommend.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"

	ActionImmediateReview = "immediate_review"
	ActionManualCheck     = "manual_check"
	ActionMonitor         = "monitor"
)

// Thresholds classifies clusters by average similarity. A cluster above
// High is high risk, above Medium is medium, anything else low.
type Thresholds struct {
	High   float64
	Medium float64
}

// Record is one analyzed cluster.
type Record struct {
	Index             int                           `json:"index"`
	AverageSimilarity float64                       `json:"average_similarity"`
	Strength          float64                       `json:"strength"`
	Members           []string                      `json:"members"`
	Size              int                           `json:"size"`
	DominantLanguage  string                        `json:"dominant_language,omitempty"`
	SimilarityMatrix  map[string]map[string]float64 `json:"similarity_matrix"`
	// MissingPairs lists member pairs with no recorded comparison;
	// their matrix entries default to 0 but the gap stays visible.
	MissingPairs      []string `json:"missing_pairs,omitempty"`
	RiskLevel         string   `json:"risk_level"`
	RecommendedAction string   `json:"recommended_action"`
}

// Analyze enriches every raw cluster. The similarity matrix is sourced
// from the comparison summaries using the averaged metric; pairs
// without a summary are recorded as gaps rather than silently zeroed.
func Analyze(raw []artifact.Cluster, index *submissions.Index, set *comparisons.Set, thresholds Thresholds, logger zerolog.Logger) []Record {
	records := make([]Record, 0, len(raw))
	for _, cluster := range raw {
		records = append(records, analyzeOne(cluster, index, set, thresholds, logger))
	}
	return records
}

func analyzeOne(cluster artifact.Cluster, index *submissions.Index, set *comparisons.Set, thresholds Thresholds, logger zerolog.Logger) Record {
	rec := Record{
		Index:             cluster.Index,
		AverageSimilarity: cluster.AverageSimilarity,
		Strength:          cluster.Strength,
		Members:           cluster.Members,
		Size:              len(cluster.Members),
	}

	rec.DominantLanguage = dominantLanguage(cluster.Members, index)
	rec.SimilarityMatrix, rec.MissingPairs = similarityMatrix(cluster.Members, set)

	for _, pair := range rec.MissingPairs {
		logger.Warn().
			Int("cluster", cluster.Index).
			Str("pair", pair).
			Msg("No comparison recorded for cluster member pair")
	}

	switch {
	case cluster.AverageSimilarity > thresholds.High:
		rec.RiskLevel, rec.RecommendedAction = RiskHigh, ActionImmediateReview
	case cluster.AverageSimilarity > thresholds.Medium:
		rec.RiskLevel, rec.RecommendedAction = RiskMedium, ActionManualCheck
	default:
		rec.RiskLevel, rec.RecommendedAction = RiskLow, ActionMonitor
	}

	return rec
}

// dominantLanguage is the most frequent detected language among the
// cluster's members, ties broken by first-seen member order. Empty when
// no member has a detected language.
func dominantLanguage(members []string, index *submissions.Index) string {
	counts := make(map[string]int)
	var order []string
	for _, id := range members {
		rec, ok := index.Lookup(id)
		if !ok || rec.Language == "" {
			continue
		}
		if counts[rec.Language] == 0 {
			order = append(order, rec.Language)
		}
		counts[rec.Language]++
	}

	best := ""
	for _, label := range order {
		if best == "" || counts[label] > counts[best] {
			best = label
		}
	}
	return best
}

// similarityMatrix builds the square pairwise matrix over the cluster's
// members. Diagonal entries are always 1. Missing pairs default to 0
// and are reported once per unordered pair.
func similarityMatrix(members []string, set *comparisons.Set) (map[string]map[string]float64, []string) {
	matrix := make(map[string]map[string]float64, len(members))
	var missing []string

	for i, a := range members {
		matrix[a] = make(map[string]float64, len(members))
		for j, b := range members {
			if a == b {
				matrix[a][b] = 1.0
				continue
			}
			sim, ok := set.Similarity(a, b, comparisons.MetricAvg)
			matrix[a][b] = sim
			if !ok && i < j {
				missing = append(missing, a+"/"+b)
			}
		}
	}
	return matrix, missing
}
