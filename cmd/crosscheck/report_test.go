package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasile/crosscheck/pkg/analyzer/comparisons"
	"github.com/avasile/crosscheck/pkg/analyzer/submissions"
	"github.com/avasile/crosscheck/pkg/engine"
)

func sampleReport() *engine.Report {
	return &engine.Report{
		AnalysisID: "test-id",
		Submissions: []submissions.Record{
			{SubmissionID: "alice", DisplayName: "Alice", FileCount: 1, TotalTokens: 120, Language: "python"},
			{SubmissionID: "bob", DisplayName: "Bob", FileCount: 1, TotalTokens: 118, Language: "python"},
		},
		Comparisons: []comparisons.Summary{
			{FirstID: "alice", SecondID: "bob", Similarities: map[string]float64{comparisons.MetricAvg: 0.85}},
		},
	}
}

func TestReportView_RenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&reportView{sampleReport()}).RenderText(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "Analysis Report")
	assert.Contains(t, out, "id: test-id")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "0.85")
}

func TestReportView_RenderTextDegraded(t *testing.T) {
	report := sampleReport()
	report.FailedFragments = []string{"cluster"}

	var buf bytes.Buffer
	require.NoError(t, (&reportView{report}).RenderText(&buf, false))
	assert.Contains(t, buf.String(), "failed fragments: [cluster]")
}

func TestReportView_RenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&reportView{sampleReport()}).RenderMarkdown(&buf))

	out := buf.String()
	assert.Contains(t, out, "## Analysis Report")
	assert.Contains(t, out, "| alice | Alice | 1 | 120 | python |")
	assert.Contains(t, out, "| Total | 1 | avg 0.85 |")
}
