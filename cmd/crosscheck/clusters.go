package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avasile/crosscheck/internal/output"
	"github.com/avasile/crosscheck/pkg/engine"
)

var clustersCmd = &cobra.Command{
	Use:   "clusters <artifact>",
	Short: "List similarity clusters with risk classification",
	Args:  cobra.ExactArgs(1),
	RunE:  runClusters,
}

func init() {
	rootCmd.AddCommand(clustersCmd)
}

func runClusters(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng := engine.New(cfg, newLogger(cfg))

	report, err := eng.Analyze(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, cluster := range report.Clusters {
		rows = append(rows, []string{
			fmt.Sprintf("%d", cluster.Index),
			fmt.Sprintf("%d", cluster.Size),
			fmt.Sprintf("%.2f", cluster.AverageSimilarity),
			cluster.DominantLanguage,
			cluster.RiskLevel,
			cluster.RecommendedAction,
			strings.Join(cluster.Members, ", "),
		})
	}

	return formatter.Output(&output.Table{
		Title:   "Clusters",
		Headers: []string{"Index", "Size", "Avg Sim", "Language", "Risk", "Action", "Members"},
		Rows:    rows,
		Data:    report.Clusters,
	})
}
