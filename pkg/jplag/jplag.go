// Package jplag invokes the external JPlag analyzer and hands back the
// path of the result artifact it produced.
package jplag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/avasile/crosscheck/pkg/config"
	"github.com/avasile/crosscheck/pkg/lang"
)

// ErrNoArtifact is returned when the analyzer exits successfully but no
// result archive appears at the expected path.
var ErrNoArtifact = errors.New("jplag: run produced no result artifact")

// Runner shells out to the analyzer jar.
type Runner struct {
	cfg    config.JPlagConfig
	logger zerolog.Logger
}

// NewRunner creates a runner from the analyzer section of the config.
func NewRunner(cfg config.JPlagConfig, logger zerolog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// Request describes one analyzer invocation.
type Request struct {
	// SubmissionDir holds one subdirectory per submission.
	SubmissionDir string
	// ResultPath is where the analyzer writes its archive, without the
	// extension the analyzer appends itself.
	ResultPath string
	Language   lang.Language
	Normalize  bool
}

// Run executes the analyzer and returns the path of the produced
// archive. The analyzer appends its own extension to the requested
// result path.
func (r *Runner) Run(ctx context.Context, req Request) (string, error) {
	if r.cfg.JarPath == "" {
		return "", errors.New("jplag: jar path not configured")
	}

	args := []string{
		"-jar", r.cfg.JarPath,
		"--mode", "run",
		"-l", req.Language.String(),
		"-r", req.ResultPath,
		"-t", strconv.Itoa(r.cfg.MinTokens),
		"-m", formatThreshold(r.cfg.SimilarityThreshold),
		"--cluster-enable",
		"--cluster-alg", r.cfg.ClusterAlgorithm,
	}
	if req.Normalize || r.cfg.Normalize {
		args = append(args, "--normalize")
	}
	args = append(args, req.SubmissionDir)

	javaBin := r.cfg.JavaBin
	if javaBin == "" {
		javaBin = "java"
	}

	r.logger.Info().
		Str("language", req.Language.String()).
		Str("submissions", req.SubmissionDir).
		Msg("Running analyzer")
	r.logger.Debug().Strs("args", args).Msg("Analyzer command")

	cmd := exec.CommandContext(ctx, javaBin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("jplag: %w: %s", err, lastLine(output))
	}

	artifactPath := req.ResultPath + ".jplag"
	if _, err := os.Stat(artifactPath); err != nil {
		return "", fmt.Errorf("%w: expected %s", ErrNoArtifact, artifactPath)
	}
	return artifactPath, nil
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
