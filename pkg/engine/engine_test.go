package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasile/crosscheck/internal/testutil"
	"github.com/avasile/crosscheck/pkg/analyzer/clusters"
	"github.com/avasile/crosscheck/pkg/analyzer/comparisons"
	"github.com/avasile/crosscheck/pkg/artifact"
	"github.com/avasile/crosscheck/pkg/config"
)

func testEngine() *Engine {
	return New(config.Default(), zerolog.Nop())
}

func TestAnalyze_FullArtifact(t *testing.T) {
	path := testutil.WriteArtifact(t, t.TempDir(), testutil.DefaultEntries())

	report, err := testEngine().Analyze(context.Background(), path)
	require.NoError(t, err)

	assert.NotEmpty(t, report.AnalysisID)
	assert.Empty(t, report.FailedFragments)

	require.Len(t, report.Submissions, 2)
	assert.Equal(t, "alice", report.Submissions[0].SubmissionID)
	assert.Equal(t, "Alice", report.Submissions[0].DisplayName)
	assert.Equal(t, 120, report.Submissions[0].TotalTokens)
	assert.Equal(t, "python", report.Submissions[0].Language)
	assert.Equal(t, 5, report.Submissions[0].LinesOfCode)

	require.Len(t, report.Comparisons, 1)
	assert.Equal(t, 0.85, report.Comparisons[0].Metric(comparisons.MetricAvg))
	assert.Equal(t, 1, report.TotalComparisons)

	require.Len(t, report.Clusters, 1)
	assert.Equal(t, clusters.RiskHigh, report.Clusters[0].RiskLevel)
	assert.Equal(t, 1.0, report.Clusters[0].SimilarityMatrix["alice"]["alice"])
	assert.Equal(t, 0.85, report.Clusters[0].SimilarityMatrix["bob"]["alice"])

	assert.Equal(t, map[string]int{"python": 2}, report.LanguageDistribution)
	assert.Equal(t, int64(1200), report.RunDuration)
	assert.JSONEq(t, `{"minimumTokenMatch": 9}`, string(report.Options))
	assert.JSONEq(t, `[0, 0, 1]`, string(report.Distribution.RawDistribution))
}

func TestAnalyze_InvalidArchiveIsFatal(t *testing.T) {
	dir := t.TempDir()

	_, err := testEngine().Analyze(context.Background(), filepath.Join(dir, "absent.jplag"))
	assert.ErrorIs(t, err, artifact.ErrInvalidArtifact)
}

func TestAnalyze_MissingClusterFragmentDegrades(t *testing.T) {
	entries := testutil.DefaultEntries()
	delete(entries, "cluster.json")
	path := testutil.WriteArtifact(t, t.TempDir(), entries)

	report, err := testEngine().Analyze(context.Background(), path)
	require.NoError(t, err)

	assert.Empty(t, report.Clusters)
	assert.Equal(t, []string{"cluster"}, report.FailedFragments)
	assert.Len(t, report.Comparisons, 1, "remaining fragments still contribute")
}

func TestAnalyze_MalformedFragmentDegrades(t *testing.T) {
	entries := testutil.DefaultEntries()
	entries["topComparisons.json"] = `{not json`
	path := testutil.WriteArtifact(t, t.TempDir(), entries)

	report, err := testEngine().Analyze(context.Background(), path)
	require.NoError(t, err)

	assert.Empty(t, report.Comparisons)
	assert.Equal(t, []string{"topComparisons"}, report.FailedFragments)
	assert.Len(t, report.Submissions, 2)
}

func TestAnalyze_MissingFileIndexZeroesStats(t *testing.T) {
	entries := testutil.DefaultEntries()
	delete(entries, "submissionFileIndex.json")
	path := testutil.WriteArtifact(t, t.TempDir(), entries)

	report, err := testEngine().Analyze(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, report.Submissions, 2)
	assert.Zero(t, report.Submissions[0].FileCount)
	assert.Zero(t, report.Submissions[0].TotalTokens)
	assert.Contains(t, report.FailedFragments, "submissionFileIndex")
}

func TestAnalyze_Cancelled(t *testing.T) {
	path := testutil.WriteArtifact(t, t.TempDir(), testutil.DefaultEntries())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := testEngine().Analyze(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report, "cancellation must not yield a partial report")
}

func TestAnalyze_ProgressCallback(t *testing.T) {
	path := testutil.WriteArtifact(t, t.TempDir(), testutil.DefaultEntries())

	var mu sync.Mutex
	ticks := 0
	eng := New(config.Default(), zerolog.Nop(), WithProgress(func() {
		mu.Lock()
		ticks++
		mu.Unlock()
	}))

	_, err := eng.Analyze(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, len(artifact.FragmentNames), ticks)
}

func TestComparison(t *testing.T) {
	path := testutil.WriteArtifact(t, t.TempDir(), testutil.DefaultEntries())

	detail, err := testEngine().Comparison(context.Background(), path, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", detail.FirstID)
	require.Len(t, detail.Matches, 1)
}

func TestComparison_NotFound(t *testing.T) {
	path := testutil.WriteArtifact(t, t.TempDir(), testutil.DefaultEntries())

	_, err := testEngine().Comparison(context.Background(), path, "alice", "mallory")
	assert.ErrorIs(t, err, comparisons.ErrNotFound)
}
