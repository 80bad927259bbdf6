package clusters

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasile/crosscheck/pkg/analyzer/comparisons"
	"github.com/avasile/crosscheck/pkg/analyzer/submissions"
	"github.com/avasile/crosscheck/pkg/artifact"
)

var testThresholds = Thresholds{High: 0.8, Medium: 0.5}

func testIndex(t *testing.T) *submissions.Index {
	t.Helper()
	mappings := &artifact.SubmissionMappings{IDToDisplayName: map[string]string{
		"alice": "Alice A.",
		"bob":   "Bob B.",
		"carol": "Carol C.",
	}}
	fileIndex := artifact.FileIndex{
		"alice": {"main.py": {TokenCount: 40}},
		"bob":   {"main.py": {TokenCount: 42}},
		"carol": {"Main.java": {TokenCount: 55}},
	}
	return submissions.Build(mappings, fileIndex, nil)
}

func testSet(pairs map[[2]string]float64) *comparisons.Set {
	summaries := make([]comparisons.Summary, 0, len(pairs))
	for pair, sim := range pairs {
		summaries = append(summaries, comparisons.Summary{
			FirstID:      pair[0],
			SecondID:     pair[1],
			Similarities: map[string]float64{comparisons.MetricAvg: sim},
		})
	}
	return comparisons.NewSet(summaries)
}

func TestAnalyze_MatrixSymmetricWithUnitDiagonal(t *testing.T) {
	set := testSet(map[[2]string]float64{
		{"alice", "bob"}:   0.92,
		{"bob", "carol"}:   0.61,
		{"alice", "carol"}: 0.44,
	})
	raw := []artifact.Cluster{{
		Index:             0,
		AverageSimilarity: 0.65,
		Strength:          0.7,
		Members:           []string{"alice", "bob", "carol"},
	}}

	records := Analyze(raw, testIndex(t), set, testThresholds, zerolog.Nop())
	require.Len(t, records, 1)
	rec := records[0]

	assert.Equal(t, 3, rec.Size)
	for _, id := range rec.Members {
		assert.Equal(t, 1.0, rec.SimilarityMatrix[id][id])
	}
	assert.Equal(t, 0.92, rec.SimilarityMatrix["alice"]["bob"])
	assert.Equal(t, 0.92, rec.SimilarityMatrix["bob"]["alice"])
	assert.Equal(t, 0.61, rec.SimilarityMatrix["carol"]["bob"])
	assert.Empty(t, rec.MissingPairs)
}

func TestAnalyze_MissingPairRecordedAsZero(t *testing.T) {
	set := testSet(map[[2]string]float64{
		{"alice", "bob"}: 0.9,
	})
	raw := []artifact.Cluster{{
		Index:             2,
		AverageSimilarity: 0.45,
		Members:           []string{"alice", "bob", "carol"},
	}}

	records := Analyze(raw, testIndex(t), set, testThresholds, zerolog.Nop())
	require.Len(t, records, 1)
	rec := records[0]

	assert.Equal(t, 0.0, rec.SimilarityMatrix["alice"]["carol"])
	assert.Equal(t, 0.0, rec.SimilarityMatrix["carol"]["alice"])
	assert.ElementsMatch(t, []string{"alice/carol", "bob/carol"}, rec.MissingPairs)
}

func TestAnalyze_DominantLanguage(t *testing.T) {
	set := testSet(nil)
	raw := []artifact.Cluster{{
		Members: []string{"alice", "bob", "carol"},
	}}

	records := Analyze(raw, testIndex(t), set, testThresholds, zerolog.Nop())
	require.Len(t, records, 1)
	assert.Equal(t, "python", records[0].DominantLanguage)
}

func TestAnalyze_DominantLanguageTieBreaksOnFirstSeen(t *testing.T) {
	set := testSet(nil)
	raw := []artifact.Cluster{{
		Members: []string{"carol", "alice"},
	}}

	records := Analyze(raw, testIndex(t), set, testThresholds, zerolog.Nop())
	require.Len(t, records, 1)
	assert.Equal(t, "java", records[0].DominantLanguage)
}

func TestAnalyze_RiskClassification(t *testing.T) {
	cases := []struct {
		name       string
		similarity float64
		level      string
		action     string
	}{
		{"above high threshold", 0.85, RiskHigh, ActionImmediateReview},
		{"above medium threshold", 0.65, RiskMedium, ActionManualCheck},
		{"at medium threshold", 0.5, RiskLow, ActionMonitor},
		{"below all thresholds", 0.2, RiskLow, ActionMonitor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := []artifact.Cluster{{AverageSimilarity: tc.similarity, Members: []string{"alice", "bob"}}}
			set := testSet(map[[2]string]float64{{"alice", "bob"}: tc.similarity})

			records := Analyze(raw, testIndex(t), set, testThresholds, zerolog.Nop())
			require.Len(t, records, 1)
			assert.Equal(t, tc.level, records[0].RiskLevel)
			assert.Equal(t, tc.action, records[0].RecommendedAction)
		})
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	records := Analyze(nil, testIndex(t), testSet(nil), testThresholds, zerolog.Nop())
	assert.Empty(t, records)
}
