package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/avasile/crosscheck/internal/output"
	"github.com/avasile/crosscheck/internal/progress"
	"github.com/avasile/crosscheck/pkg/analyzer/comparisons"
	"github.com/avasile/crosscheck/pkg/artifact"
	"github.com/avasile/crosscheck/pkg/engine"
)

var reportCmd = &cobra.Command{
	Use:   "report <artifact>",
	Short: "Build the full analysis report from a result archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tracker := progress.NewTracker("Parsing fragments...", len(artifact.FragmentNames))
	eng := engine.New(cfg, newLogger(cfg), engine.WithProgress(tracker.Tick))

	report, err := eng.Analyze(cmd.Context(), args[0])
	if err != nil {
		tracker.FinishError(err)
		return err
	}
	tracker.FinishSuccess()

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(&reportView{report})
}

// reportView renders the full report: a summary line, the submission
// table and the comparison table. JSON output carries the raw report.
type reportView struct {
	report *engine.Report
}

func (v *reportView) RenderData() any {
	return v.report
}

func (v *reportView) submissionTable() *output.Table {
	var rows [][]string
	for _, rec := range v.report.Submissions {
		rows = append(rows, []string{
			rec.SubmissionID, rec.DisplayName,
			fmt.Sprintf("%d", rec.FileCount),
			fmt.Sprintf("%d", rec.TotalTokens),
			rec.Language,
		})
	}
	return &output.Table{
		Title:   "Submissions",
		Headers: []string{"ID", "Name", "Files", "Tokens", "Language"},
		Rows:    rows,
	}
}

func (v *reportView) comparisonTable() *output.Table {
	var rows [][]string
	total := 0.0
	for _, sum := range v.report.Comparisons {
		avg := sum.Metric(comparisons.MetricAvg)
		total += avg
		rows = append(rows, []string{
			sum.FirstID, sum.SecondID,
			fmt.Sprintf("%.2f", avg),
		})
	}

	tbl := &output.Table{
		Title:   "Top Comparisons",
		Headers: []string{"First", "Second", "Similarity"},
		Rows:    rows,
	}
	if len(rows) > 0 {
		tbl.Footer = []string{"Total", fmt.Sprintf("%d", len(rows)), fmt.Sprintf("avg %.2f", total/float64(len(rows)))}
	}
	return tbl
}

func (v *reportView) header() *output.Section {
	r := v.report
	section := &output.Section{
		Title: "Analysis Report",
		Content: fmt.Sprintf("id: %s  submissions: %d  comparisons: %d  clusters: %d  duration: %dms",
			r.AnalysisID, len(r.Submissions), len(r.Comparisons), len(r.Clusters), r.DurationMS),
	}
	if len(r.FailedFragments) > 0 {
		section.Sections = append(section.Sections, output.Section{
			Title:   "Degraded",
			Content: fmt.Sprintf("failed fragments: %v", r.FailedFragments),
		})
	}
	return section
}

func (v *reportView) RenderText(w io.Writer, colored bool) error {
	if err := v.header().RenderText(w, colored); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if err := v.submissionTable().RenderText(w, colored); err != nil {
		return err
	}
	return v.comparisonTable().RenderText(w, colored)
}

func (v *reportView) RenderMarkdown(w io.Writer) error {
	if err := v.header().RenderMarkdown(w); err != nil {
		return err
	}
	if err := v.submissionTable().RenderMarkdown(w); err != nil {
		return err
	}
	return v.comparisonTable().RenderMarkdown(w)
}
