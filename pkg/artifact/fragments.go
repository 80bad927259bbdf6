package artifact

import (
	"encoding/json"
	"fmt"
)

// TopComparison is one entry of the topComparisons.json summary list.
type TopComparison struct {
	FirstSubmission  string             `json:"firstSubmission"`
	SecondSubmission string             `json:"secondSubmission"`
	Similarities     map[string]float64 `json:"similarities"`
}

// DecodeTopComparisons parses the summary list. Entries whose similarity
// values fall outside [0, 1] or that lack a submission id are malformed
// and dropped; the count of dropped entries is returned alongside.
func DecodeTopComparisons(data []byte) ([]TopComparison, int, error) {
	var raw []TopComparison
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode topComparisons: %w", err)
	}

	valid := raw[:0]
	dropped := 0
	for _, tc := range raw {
		if tc.FirstSubmission == "" || tc.SecondSubmission == "" || !similaritiesInRange(tc.Similarities) {
			dropped++
			continue
		}
		valid = append(valid, tc)
	}
	return valid, dropped, nil
}

func similaritiesInRange(similarities map[string]float64) bool {
	for _, v := range similarities {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// FailedSubmission describes a submission the analyzer could not process.
type FailedSubmission struct {
	Name         string `json:"name"`
	State        string `json:"state"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// RunInformation summarizes one analyzer run.
type RunInformation struct {
	Duration          int64              `json:"duration"`
	TotalComparisons  int                `json:"total_comparisons"`
	DateOfExecution   string             `json:"date_of_execution,omitempty"`
	FailedSubmissions []FailedSubmission `json:"failed_submissions"`
}

// runInformationJSON accepts both the current and the legacy key names
// the analyzer has emitted for duration and submission identity.
type runInformationJSON struct {
	Duration          int64 `json:"duration"`
	ExecutionTime     int64 `json:"executionTime"`
	TotalComparisons  int   `json:"totalComparisons"`
	DateOfExecution   string `json:"dateOfExecution"`
	SubmissionDate    string `json:"submissionDate"`
	FailedSubmissions []struct {
		SubmissionID    string `json:"submissionId"`
		Name            string `json:"name"`
		SubmissionState string `json:"submissionState"`
		State           string `json:"state"`
		ErrorMessage    string `json:"errorMessage"`
	} `json:"failedSubmissions"`
}

// DecodeRunInformation parses runInformation.json.
func DecodeRunInformation(data []byte) (*RunInformation, error) {
	var raw runInformationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode runInformation: %w", err)
	}

	info := &RunInformation{
		Duration:         raw.Duration,
		TotalComparisons: raw.TotalComparisons,
		DateOfExecution:  raw.DateOfExecution,
	}
	if info.Duration == 0 {
		info.Duration = raw.ExecutionTime
	}
	if info.DateOfExecution == "" {
		info.DateOfExecution = raw.SubmissionDate
	}

	for _, fs := range raw.FailedSubmissions {
		name := fs.SubmissionID
		if name == "" {
			name = fs.Name
		}
		state := fs.SubmissionState
		if state == "" {
			state = fs.State
		}
		info.FailedSubmissions = append(info.FailedSubmissions, FailedSubmission{
			Name:         name,
			State:        state,
			ErrorMessage: fs.ErrorMessage,
		})
	}
	return info, nil
}

// SubmissionMappings maps submission ids to their display names.
type SubmissionMappings struct {
	IDToDisplayName map[string]string `json:"submissionIdToDisplayName"`
}

// DecodeSubmissionMappings parses submissionMappings.json.
func DecodeSubmissionMappings(data []byte) (*SubmissionMappings, error) {
	var m SubmissionMappings
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode submissionMappings: %w", err)
	}
	if m.IDToDisplayName == nil {
		m.IDToDisplayName = map[string]string{}
	}
	return &m, nil
}

// FileIndexEntry carries per-file token statistics.
type FileIndexEntry struct {
	TokenCount int `json:"tokenCount"`
}

// FileIndex maps submission id to filename to file statistics.
type FileIndex map[string]map[string]FileIndexEntry

// DecodeFileIndex parses submissionFileIndex.json.
func DecodeFileIndex(data []byte) (FileIndex, error) {
	var raw struct {
		FileIndexes FileIndex `json:"fileIndexes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode submissionFileIndex: %w", err)
	}
	if raw.FileIndexes == nil {
		raw.FileIndexes = FileIndex{}
	}
	return raw.FileIndexes, nil
}

// Distribution carries the analyzer's similarity histogram verbatim.
type Distribution struct {
	Buckets json.RawMessage `json:"buckets"`
}

// DecodeDistribution parses distribution.json.
func DecodeDistribution(data []byte) (*Distribution, error) {
	var d Distribution
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode distribution: %w", err)
	}
	return &d, nil
}

// Cluster is one entry of the raw cluster list.
type Cluster struct {
	Index             int      `json:"index"`
	AverageSimilarity float64  `json:"averageSimilarity"`
	Strength          float64  `json:"strength"`
	Members           []string `json:"members"`
}

// DecodeClusters parses cluster.json.
func DecodeClusters(data []byte) ([]Cluster, error) {
	var clusters []Cluster
	if err := json.Unmarshal(data, &clusters); err != nil {
		return nil, fmt.Errorf("decode cluster: %w", err)
	}
	return clusters, nil
}

// Position locates a token in source code.
type Position struct {
	Line       int `json:"line"`
	Column     int `json:"column"`
	TokenIndex int `json:"tokenListIndex"`
}

// RawMatch is one matched token run in a per-pair comparison fragment.
type RawMatch struct {
	FirstFileName  string   `json:"firstFileName"`
	SecondFileName string   `json:"secondFileName"`
	StartInFirst   Position `json:"startInFirst"`
	EndInFirst     Position `json:"endInFirst"`
	StartInSecond  Position `json:"startInSecond"`
	EndInSecond    Position `json:"endInSecond"`
	LengthOfFirst  int      `json:"lengthOfFirst"`
	LengthOfSecond int      `json:"lengthOfSecond"`
}

// ComparisonFile is the decoded comparisons/<first>-<second>.json entry.
type ComparisonFile struct {
	FirstSubmissionID  string             `json:"firstSubmissionId"`
	SecondSubmissionID string             `json:"secondSubmissionId"`
	Similarities       map[string]float64 `json:"similarities"`
	FirstSimilarity    float64            `json:"firstSimilarity"`
	SecondSimilarity   float64            `json:"secondSimilarity"`
	Matches            []RawMatch         `json:"matches"`
}

// DecodeComparison parses a per-pair comparison fragment.
func DecodeComparison(data []byte) (*ComparisonFile, error) {
	var c ComparisonFile
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode comparison: %w", err)
	}
	return &c, nil
}
