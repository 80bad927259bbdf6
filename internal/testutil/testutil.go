// Package testutil builds analyzer result archives for tests.
package testutil

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteArtifact creates a zip archive under dir containing the given
// entries (name -> content) and returns its path.
func WriteArtifact(t *testing.T, dir string, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, "result.jplag")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create artifact: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close artifact: %v", err)
	}
	return path
}

// MarshalJSON encodes v, failing the test on error.
func MarshalJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

// DefaultEntries returns a minimal but complete artifact layout two
// submissions, one comparison and one cluster deep. Tests override or
// delete entries as needed.
func DefaultEntries() map[string]string {
	return map[string]string{
		"topComparisons.json": `[
			{"firstSubmission": "alice", "secondSubmission": "bob",
			 "similarities": {"AVG": 0.85, "MAX": 0.9}}
		]`,
		"runInformation.json": `{
			"duration": 1200, "totalComparisons": 1,
			"failedSubmissions": []
		}`,
		"submissionMappings.json": `{
			"submissionIdToDisplayName": {"alice": "Alice", "bob": "Bob"}
		}`,
		"submissionFileIndex.json": `{
			"fileIndexes": {
				"alice": {"main.py": {"tokenCount": 120}},
				"bob": {"main.py": {"tokenCount": 118}}
			}
		}`,
		"distribution.json": `{"buckets": [0, 0, 1]}`,
		"cluster.json": `[
			{"index": 0, "averageSimilarity": 0.85, "strength": 0.7,
			 "members": ["alice", "bob"]}
		]`,
		"options.json": `{"minimumTokenMatch": 9}`,
		"comparisons/alice-bob.json": `{
			"firstSubmissionId": "alice", "secondSubmissionId": "bob",
			"similarities": {"AVG": 0.85, "MAX": 0.9},
			"firstSimilarity": 0.84, "secondSimilarity": 0.86,
			"matches": [
				{"firstFileName": "main.py", "secondFileName": "main.py",
				 "startInFirst": {"line": 1, "column": 0, "tokenListIndex": 0},
				 "endInFirst": {"line": 3, "column": 10, "tokenListIndex": 24},
				 "startInSecond": {"line": 2, "column": 0, "tokenListIndex": 0},
				 "endInSecond": {"line": 4, "column": 10, "tokenListIndex": 24},
				 "lengthOfFirst": 25, "lengthOfSecond": 25}
			]
		}`,
		"files/alice/main.py": "def solve():\n    x = 1\n    return x\n\nprint(solve())\n",
		"files/bob/main.py":   "import sys\ndef solve():\n    x = 1\n    return x\n\nprint(solve())\n",
	}
}
