// Package distribution computes summary statistics over comparison
// similarities and the language breakdown of a submission set.
package distribution

import (
	"encoding/json"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/avasile/crosscheck/pkg/analyzer/comparisons"
	"github.com/avasile/crosscheck/pkg/analyzer/submissions"
	"github.com/avasile/crosscheck/pkg/stats"
)

// Summary holds aggregate statistics over the averaged similarity of
// every comparison summary.
type Summary struct {
	TotalComparisons int     `json:"total_comparisons"`
	Average          float64 `json:"average_similarity"`
	Median           float64 `json:"median_similarity"`
	P90              float64 `json:"p90_similarity"`
	Max              float64 `json:"max_similarity"`
	Min              float64 `json:"min_similarity"`
	// Histogram counts similarities into equal-width buckets over
	// [0,1]; a value of exactly 1 lands in the last bucket.
	Histogram []int `json:"histogram"`
	// RawDistribution carries the analyzer's own distribution fragment
	// untouched, when the artifact had one.
	RawDistribution json.RawMessage `json:"raw_distribution,omitempty"`
}

// Compute aggregates the averaged similarity of every summary. With no
// summaries all statistics are zero and the histogram is empty of
// counts but keeps its bucket count.
func Compute(summaries []comparisons.Summary, buckets int, raw json.RawMessage) Summary {
	out := Summary{
		TotalComparisons: len(summaries),
		Histogram:        make([]int, buckets),
		RawDistribution:  raw,
	}
	if len(summaries) == 0 {
		return out
	}

	values := make([]float64, 0, len(summaries))
	for _, sum := range summaries {
		values = append(values, sum.Metric(comparisons.MetricAvg))
	}
	// The summary list arrives ordered by similarity descending; the
	// order statistics below require ascending order.
	sort.Float64s(values)

	out.Average = stat.Mean(values, nil)
	out.Median = stats.Median(values)
	out.P90 = stats.Percentile(values, 90)
	out.Min, out.Max = values[0], values[len(values)-1]

	for _, v := range values {
		out.Histogram[bucketFor(v, buckets)]++
	}
	return out
}

func bucketFor(v float64, buckets int) int {
	idx := int(v * float64(buckets))
	if idx >= buckets {
		idx = buckets - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Languages counts submissions per detected language. Submissions with
// no detected language are excluded from the breakdown.
func Languages(index *submissions.Index) map[string]int {
	counts := make(map[string]int)
	for _, rec := range index.Records() {
		if rec.Language == "" {
			continue
		}
		counts[rec.Language]++
	}
	return counts
}
