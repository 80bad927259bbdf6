package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avasile/crosscheck/internal/output"
	"github.com/avasile/crosscheck/internal/progress"
	"github.com/avasile/crosscheck/pkg/artifact"
	"github.com/avasile/crosscheck/pkg/engine"
	"github.com/avasile/crosscheck/pkg/jplag"
	"github.com/avasile/crosscheck/pkg/lang"
)

var runCmd = &cobra.Command{
	Use:   "run <submission-dir>",
	Short: "Run the analyzer on a submission directory and report on its result",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringP("language", "l", "java", "Submission language: analyzer name or judge id (e.g. cc.cc14o2, py.pypy3)")
	runCmd.Flags().StringP("result", "r", "crosscheck-result", "Result path, without extension")
	runCmd.Flags().Bool("normalize", false, "Enable token sequence normalization")
	runCmd.Flags().Bool("no-report", false, "Only run the analyzer, skip report assembly")
	rootCmd.AddCommand(runCmd)
}

// resolveLanguage accepts both analyzer language names and judge
// language identifiers (compiler variants like cc.cc14o2 included).
// Anything the judge mapping does not recognize is passed to the
// analyzer as-is.
func resolveLanguage(s string) lang.Language {
	if l, ok := lang.FromJudge(s); ok {
		return l
	}
	return lang.Language(s)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	language, _ := cmd.Flags().GetString("language")
	resultPath, _ := cmd.Flags().GetString("result")
	normalize, _ := cmd.Flags().GetBool("normalize")
	noReport, _ := cmd.Flags().GetBool("no-report")

	runner := jplag.NewRunner(cfg.JPlag, logger)

	tracker := progress.NewSpinner("Running analyzer...")
	artifactPath, err := runner.Run(cmd.Context(), jplag.Request{
		SubmissionDir: args[0],
		ResultPath:    resultPath,
		Language:      resolveLanguage(language),
		Normalize:     normalize,
	})
	if err != nil {
		tracker.FinishError(err)
		return err
	}
	tracker.FinishSuccess()

	if noReport {
		fmt.Fprintln(cmd.OutOrStdout(), artifactPath)
		return nil
	}

	parse := progress.NewTracker("Parsing fragments...", len(artifact.FragmentNames))
	eng := engine.New(cfg, logger, engine.WithProgress(parse.Tick))
	report, err := eng.Analyze(cmd.Context(), artifactPath)
	if err != nil {
		parse.FinishError(err)
		return err
	}
	parse.FinishSuccess()

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(&reportView{report})
}
