package comparisons

// Metrics holds the line-level measurements derived during a highlight
// pass.
type Metrics struct {
	// Coverage is the percentage of all involved source lines covered
	// by matches, capped at 100 because overlapping matches make the
	// naive sum exceed the line total.
	Coverage float64 `json:"coverage"`
	// LongestMatch is the largest first-side token length among the
	// comparison's matches.
	LongestMatch int `json:"longest_match"`
	// TotalMatchedLines counts first-side lines spanned by matches.
	TotalMatchedLines int `json:"total_matched_lines"`
}

// Highlight projects matches onto both submissions' source lines. The
// input file contents are not mutated; fresh annotated copies are
// returned so the same loaded sources can back multiple comparisons.
// Matches are assumed valid (degenerate ranges are filtered by the
// correlator before this pass).
func Highlight(matches []Match, firstFiles, secondFiles []FileContent) ([]FileContent, []FileContent, Metrics) {
	first := copyFiles(firstFiles)
	second := copyFiles(secondFiles)

	var m Metrics
	for _, match := range matches {
		markLines(first, match.FirstFile, match.StartInFirst.Line, match.EndInFirst.Line, match.ID)
		markLines(second, match.SecondFile, match.StartInSecond.Line, match.EndInSecond.Line, match.ID)

		if match.LengthOfFirst > m.LongestMatch {
			m.LongestMatch = match.LengthOfFirst
		}
		m.TotalMatchedLines += match.EndInFirst.Line - match.StartInFirst.Line + 1
	}

	m.Coverage = coverage(matches, first, second)
	return first, second, m
}

// coverage relates the lines spanned by matches on both sides to the
// total lines of every involved file, as a percentage capped at 100.
func coverage(matches []Match, firstFiles, secondFiles []FileContent) float64 {
	totalLines := 0
	for _, f := range firstFiles {
		totalLines += f.TotalLines
	}
	for _, f := range secondFiles {
		totalLines += f.TotalLines
	}
	if totalLines == 0 {
		return 0
	}

	matchedLines := 0
	for _, match := range matches {
		matchedLines += match.EndInFirst.Line - match.StartInFirst.Line + 1
		matchedLines += match.EndInSecond.Line - match.StartInSecond.Line + 1
	}

	pct := float64(matchedLines) / float64(totalLines) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

func copyFiles(files []FileContent) []FileContent {
	out := make([]FileContent, len(files))
	for i, f := range files {
		out[i] = f
		out[i].Lines = make([]Line, len(f.Lines))
		copy(out[i].Lines, f.Lines)
	}
	return out
}

// markLines flags every line of the named file in the inclusive range
// [start, end] as matched. Lines outside the file's bounds are ignored.
func markLines(files []FileContent, filename string, start, end int, matchID string) {
	for i := range files {
		if files[i].Filename != filename {
			continue
		}
		for line := start; line <= end; line++ {
			if line < 1 || line > len(files[i].Lines) {
				continue
			}
			l := &files[i].Lines[line-1]
			l.Matched = true
			l.MatchType = MatchTypeExact
			l.MatchID = matchID
		}
		return
	}
}
