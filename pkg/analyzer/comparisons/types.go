package comparisons

import "github.com/avasile/crosscheck/pkg/artifact"

// MetricAvg is the similarity metric key the analyzer labels its
// averaged score with. The key convention is fixed by the analyzer's
// output format.
const MetricAvg = "AVG"

// MatchTypeExact tags lines covered by a token-exact match, the only
// match kind the analyzer reports.
const MatchTypeExact = "exact"

// Summary is a lightweight pairwise comparison from the top-level list.
type Summary struct {
	FirstID      string             `json:"first_id"`
	SecondID     string             `json:"second_id"`
	Similarities map[string]float64 `json:"similarities"`
}

// Metric returns the named similarity value, 0 when absent.
func (s Summary) Metric(name string) float64 {
	return s.Similarities[name]
}

// Match is a contiguous run of matching tokens between two files, with
// a stable identifier unique within its comparison.
type Match struct {
	ID             string            `json:"id"`
	FirstFile      string            `json:"first_file"`
	SecondFile     string            `json:"second_file"`
	StartInFirst   artifact.Position `json:"start_in_first"`
	EndInFirst     artifact.Position `json:"end_in_first"`
	StartInSecond  artifact.Position `json:"start_in_second"`
	EndInSecond    artifact.Position `json:"end_in_second"`
	LengthOfFirst  int               `json:"length_of_first"`
	LengthOfSecond int               `json:"length_of_second"`
}

// Line is one annotated source line.
type Line struct {
	Number    int    `json:"line_number"`
	Content   string `json:"content"`
	Matched   bool   `json:"is_match"`
	MatchType string `json:"match_type,omitempty"`
	MatchID   string `json:"match_id,omitempty"`
}

// FileContent is one source file of a submission with annotated lines.
type FileContent struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	Lines       []Line `json:"lines"`
	Language    string `json:"language,omitempty"`
	TotalLines  int    `json:"total_lines"`
	TotalTokens int    `json:"total_tokens"`
}

// Detail is the enriched pairwise comparison built on demand.
type Detail struct {
	FirstID           string             `json:"first_id"`
	SecondID          string             `json:"second_id"`
	Similarities      map[string]float64 `json:"similarities"`
	FirstSimilarity   float64            `json:"first_similarity"`
	SecondSimilarity  float64            `json:"second_similarity"`
	Matches           []Match            `json:"matches"`
	FirstFiles        []FileContent      `json:"first_files"`
	SecondFiles       []FileContent      `json:"second_files"`
	Coverage          float64            `json:"coverage"`
	LongestMatch      int                `json:"longest_match"`
	TotalMatchedLines int                `json:"total_matched_lines"`
	MalformedMatches  int                `json:"malformed_matches,omitempty"`
}

// Set indexes summaries for pair lookups in either id order.
type Set struct {
	summaries []Summary
	byPair    map[string]int
}

// NewSet builds a lookup index over the given summaries.
func NewSet(summaries []Summary) *Set {
	s := &Set{summaries: summaries, byPair: make(map[string]int, len(summaries))}
	for i, sum := range summaries {
		s.byPair[pairKey(sum.FirstID, sum.SecondID)] = i
	}
	return s
}

// Similarity returns the named metric for the pair (a, b), matching
// either id order.
func (s *Set) Similarity(a, b, metric string) (float64, bool) {
	i, ok := s.byPair[pairKey(a, b)]
	if !ok {
		return 0, false
	}
	return s.summaries[i].Metric(metric), true
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}
