// Package comparisons correlates the analyzer's pairwise similarity
// output with submission sources and projects token matches onto
// concrete source lines.
package comparisons

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/avasile/crosscheck/pkg/artifact"
	"github.com/avasile/crosscheck/pkg/lang"
)

// ErrNotFound reports that no per-pair fragment exists for a requested
// detail lookup, in either id orientation. It is a normal negative
// result, not a system failure.
var ErrNotFound = errors.New("comparisons: no detail recorded for pair")

// Summaries converts decoded top-comparison entries into summary
// records.
func Summaries(entries []artifact.TopComparison) []Summary {
	out := make([]Summary, 0, len(entries))
	for _, tc := range entries {
		out = append(out, Summary{
			FirstID:      tc.FirstSubmission,
			SecondID:     tc.SecondSubmission,
			Similarities: tc.Similarities,
		})
	}
	return out
}

// Correlator builds enriched comparison details from a bundle.
type Correlator struct {
	bundle *artifact.Bundle
	logger zerolog.Logger
}

// NewCorrelator creates a correlator over an opened bundle.
func NewCorrelator(bundle *artifact.Bundle, logger zerolog.Logger) *Correlator {
	return &Correlator{bundle: bundle, logger: logger}
}

// Detail looks up the per-pair fragment for (first, second), trying the
// reversed orientation when the requested one is absent, and builds the
// enriched comparison with highlighted sources. Returns ErrNotFound
// when neither orientation exists. When both orientations exist (not
// expected from a correct analyzer) the requested orientation wins and
// the anomaly is logged.
func (c *Correlator) Detail(first, second string) (*Detail, error) {
	data, reversed, duplicate, ok := c.bundle.LookupComparison(first, second)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, first, second)
	}
	if duplicate {
		c.logger.Warn().
			Str("first", first).
			Str("second", second).
			Msg("Comparison fragment present in both orientations, using requested order")
	}
	if reversed {
		c.logger.Debug().
			Str("first", first).
			Str("second", second).
			Msg("Comparison fragment found in reversed orientation")
	}

	cf, err := artifact.DecodeComparison(data)
	if err != nil {
		return nil, fmt.Errorf("comparison %s/%s: %w", first, second, err)
	}

	// Orient everything by the fragment's own ids so that both request
	// orders return identical content.
	firstFiles := c.loadFiles(cf.FirstSubmissionID)
	secondFiles := c.loadFiles(cf.SecondSubmissionID)

	matches, malformed := c.buildMatches(cf)
	firstFiles, secondFiles, metrics := Highlight(matches, firstFiles, secondFiles)

	return &Detail{
		FirstID:           cf.FirstSubmissionID,
		SecondID:          cf.SecondSubmissionID,
		Similarities:      cf.Similarities,
		FirstSimilarity:   cf.FirstSimilarity,
		SecondSimilarity:  cf.SecondSimilarity,
		Matches:           matches,
		FirstFiles:        firstFiles,
		SecondFiles:       secondFiles,
		Coverage:          metrics.Coverage,
		LongestMatch:      metrics.LongestMatch,
		TotalMatchedLines: metrics.TotalMatchedLines,
		MalformedMatches:  malformed,
	}, nil
}

// buildMatches converts raw matches to domain matches with stable ids,
// rejecting entries with degenerate coordinates.
func (c *Correlator) buildMatches(cf *artifact.ComparisonFile) ([]Match, int) {
	matches := make([]Match, 0, len(cf.Matches))
	seen := make(map[string]int, len(cf.Matches))
	malformed := 0

	for _, rm := range cf.Matches {
		if rm.EndInFirst.Line < rm.StartInFirst.Line || rm.EndInSecond.Line < rm.StartInSecond.Line {
			malformed++
			c.logger.Warn().
				Str("first_file", rm.FirstFileName).
				Str("second_file", rm.SecondFileName).
				Int("start_in_first", rm.StartInFirst.Line).
				Int("end_in_first", rm.EndInFirst.Line).
				Int("start_in_second", rm.StartInSecond.Line).
				Int("end_in_second", rm.EndInSecond.Line).
				Msg("Rejecting match with degenerate line range")
			continue
		}

		id := matchID(rm)
		seen[id]++
		if n := seen[id]; n > 1 {
			id = id + "-" + strconv.Itoa(n)
		}

		matches = append(matches, Match{
			ID:             id,
			FirstFile:      rm.FirstFileName,
			SecondFile:     rm.SecondFileName,
			StartInFirst:   rm.StartInFirst,
			EndInFirst:     rm.EndInFirst,
			StartInSecond:  rm.StartInSecond,
			EndInSecond:    rm.EndInSecond,
			LengthOfFirst:  rm.LengthOfFirst,
			LengthOfSecond: rm.LengthOfSecond,
		})
	}

	return matches, malformed
}

// matchID derives a stable identifier from the match's file names and
// token spans, so the same match keeps the same id across runs.
func matchID(m artifact.RawMatch) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d:%d:%d:%d\x00%d:%d",
		m.FirstFileName, m.SecondFileName,
		m.StartInFirst.TokenIndex, m.EndInFirst.TokenIndex,
		m.StartInSecond.TokenIndex, m.EndInSecond.TokenIndex,
		m.LengthOfFirst, m.LengthOfSecond)
	return "m" + strconv.FormatUint(h.Sum64(), 16)
}

// loadFiles builds unannotated file contents for a submission from the
// bundle's sources, ordered by filename.
func (c *Correlator) loadFiles(submissionID string) []FileContent {
	raw := c.bundle.SubmissionFiles(submissionID)
	if len(raw) == 0 {
		return nil
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	files := make([]FileContent, 0, len(names))
	for _, name := range names {
		content := string(raw[name])
		lines := splitLines(content)

		annotated := make([]Line, len(lines))
		for i, text := range lines {
			annotated[i] = Line{Number: i + 1, Content: text}
		}

		fc := FileContent{
			Filename:    name,
			Content:     content,
			Lines:       annotated,
			TotalLines:  len(lines),
			TotalTokens: len(strings.Fields(content)),
		}
		if label, ok := lang.DetectFile(name); ok {
			fc.Language = label
		}
		files = append(files, fc)
	}
	return files
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
