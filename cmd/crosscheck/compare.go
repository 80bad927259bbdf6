package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/avasile/crosscheck/internal/output"
	"github.com/avasile/crosscheck/pkg/analyzer/comparisons"
	"github.com/avasile/crosscheck/pkg/engine"
)

var compareCmd = &cobra.Command{
	Use:   "compare <artifact> <first> <second>",
	Short: "Show the detailed comparison of two submissions",
	Args:  cobra.ExactArgs(3),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().Bool("sources", false, "Include full source listings with match markers")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng := engine.New(cfg, newLogger(cfg))

	detail, err := eng.Comparison(cmd.Context(), args[0], args[1], args[2])
	if err != nil {
		if errors.Is(err, comparisons.ErrNotFound) {
			return fmt.Errorf("no comparison recorded for %s and %s", args[1], args[2])
		}
		return err
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	sources, _ := cmd.Flags().GetBool("sources")
	return formatter.Output(&compareView{detail: detail, sources: sources})
}

type compareView struct {
	detail  *comparisons.Detail
	sources bool
}

func (v *compareView) RenderData() any {
	return v.detail
}

func (v *compareView) matchTable() *output.Table {
	var rows [][]string
	for _, m := range v.detail.Matches {
		rows = append(rows, []string{
			m.ID,
			fmt.Sprintf("%s:%d-%d", m.FirstFile, m.StartInFirst.Line, m.EndInFirst.Line),
			fmt.Sprintf("%s:%d-%d", m.SecondFile, m.StartInSecond.Line, m.EndInSecond.Line),
			fmt.Sprintf("%d", m.LengthOfFirst),
		})
	}
	return &output.Table{
		Title:   "Matches",
		Headers: []string{"ID", "First", "Second", "Tokens"},
		Rows:    rows,
	}
}

func (v *compareView) header() *output.Section {
	d := v.detail
	section := &output.Section{
		Title: fmt.Sprintf("%s vs %s", d.FirstID, d.SecondID),
		Content: fmt.Sprintf("similarity: %.2f  coverage: %.1f%%  longest match: %d tokens  matched lines: %d",
			d.Similarities[comparisons.MetricAvg], d.Coverage, d.LongestMatch, d.TotalMatchedLines),
	}
	if d.MalformedMatches > 0 {
		section.Sections = append(section.Sections, output.Section{
			Content: fmt.Sprintf("excluded %d malformed matches", d.MalformedMatches),
		})
	}
	return section
}

func (v *compareView) RenderText(w io.Writer, colored bool) error {
	if err := v.header().RenderText(w, colored); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if err := v.matchTable().RenderText(w, colored); err != nil {
		return err
	}
	if v.sources {
		renderSources(w, v.detail.FirstFiles, colored)
		renderSources(w, v.detail.SecondFiles, colored)
	}
	return nil
}

func renderSources(w io.Writer, files []comparisons.FileContent, colored bool) {
	marked := color.New(color.FgRed)
	for _, file := range files {
		fmt.Fprintf(w, "--- %s\n", file.Filename)
		for _, line := range file.Lines {
			marker := " "
			if line.Matched {
				marker = "|"
			}
			if colored && line.Matched {
				marked.Fprintf(w, "%s %4d  %s\n", marker, line.Number, line.Content)
			} else {
				fmt.Fprintf(w, "%s %4d  %s\n", marker, line.Number, line.Content)
			}
		}
		fmt.Fprintln(w)
	}
}

func (v *compareView) RenderMarkdown(w io.Writer) error {
	if err := v.header().RenderMarkdown(w); err != nil {
		return err
	}
	return v.matchTable().RenderMarkdown(w)
}
