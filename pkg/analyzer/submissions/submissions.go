// Package submissions builds the normalized submission index from the
// analyzer's mapping and file-index fragments.
package submissions

import (
	"sort"

	"github.com/avasile/crosscheck/pkg/artifact"
	"github.com/avasile/crosscheck/pkg/lang"
)

// Record summarizes one submission. Immutable after construction.
type Record struct {
	SubmissionID string `json:"submission_id"`
	DisplayName  string `json:"display_name"`
	FileCount    int    `json:"file_count"`
	TotalTokens  int    `json:"total_tokens"`
	Language     string `json:"language,omitempty"`
	LinesOfCode  int    `json:"lines_of_code,omitempty"`
}

// Index is the normalized submission table, ordered by submission id.
type Index struct {
	records []Record
	byID    map[string]int
}

// LineCounter reports lines of code per submission when the artifact
// carries sources; artifact.Bundle satisfies it.
type LineCounter interface {
	SubmissionLineCount(id string) int
}

// Build creates one Record per id in the display-name mapping. Ids the
// file index has no entry for keep zero file and token counts. Language
// is detected from file extensions only; when no extension is
// recognized the field stays unset.
func Build(mappings *artifact.SubmissionMappings, fileIndex artifact.FileIndex, lines LineCounter) *Index {
	idx := &Index{byID: make(map[string]int, len(mappings.IDToDisplayName))}

	ids := make([]string, 0, len(mappings.IDToDisplayName))
	for id := range mappings.IDToDisplayName {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		rec := Record{
			SubmissionID: id,
			DisplayName:  mappings.IDToDisplayName[id],
		}

		if files, ok := fileIndex[id]; ok {
			filenames := make([]string, 0, len(files))
			for name, entry := range files {
				filenames = append(filenames, name)
				rec.TotalTokens += entry.TokenCount
			}
			sort.Strings(filenames)
			rec.FileCount = len(files)
			if label, ok := lang.DetectDominant(filenames); ok {
				rec.Language = label
			}
		}

		if lines != nil {
			rec.LinesOfCode = lines.SubmissionLineCount(id)
		}

		idx.byID[id] = len(idx.records)
		idx.records = append(idx.records, rec)
	}

	return idx
}

// Records returns all submission records in id order.
func (i *Index) Records() []Record {
	return i.records
}

// Lookup returns the record for a submission id.
func (i *Index) Lookup(id string) (Record, bool) {
	pos, ok := i.byID[id]
	if !ok {
		return Record{}, false
	}
	return i.records[pos], true
}

// Len reports the number of indexed submissions.
func (i *Index) Len() int {
	return len(i.records)
}
