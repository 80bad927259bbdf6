// Package artifact reads the compressed result bundle produced by an
// external code-similarity analyzer run. A bundle holds a fixed set of
// named JSON fragments, one JSON file per compared pair under
// comparisons/, and copies of the compared sources under files/.
package artifact

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidArtifact marks an archive that cannot be opened or is not a
// valid compressed container. It is the only fatal condition at this
// layer; everything else degrades per fragment.
var ErrInvalidArtifact = errors.New("artifact: not a valid analyzer archive")

// Names of the JSON fragments a bundle may carry. Only these are read
// from the archive root.
const (
	FragmentTopComparisons = "topComparisons"
	FragmentRunInformation = "runInformation"
	FragmentMappings       = "submissionMappings"
	FragmentFileIndex      = "submissionFileIndex"
	FragmentDistribution   = "distribution"
	FragmentCluster        = "cluster"
	FragmentOptions        = "options"
)

// FragmentNames lists every allow-listed fragment in a stable order.
var FragmentNames = []string{
	FragmentTopComparisons,
	FragmentRunInformation,
	FragmentMappings,
	FragmentFileIndex,
	FragmentDistribution,
	FragmentCluster,
	FragmentOptions,
}

const (
	comparisonsPrefix = "comparisons/"
	filesPrefix       = "files/"
)

// Bundle is an opened artifact with all relevant entries loaded into
// memory. It owns the raw fragment bytes until they are parsed and lives
// for the duration of one analysis request.
type Bundle struct {
	path        string
	fragments   map[string][]byte
	comparisons map[string][]byte
	sources     map[string]map[string][]byte
}

// Open reads the archive at path and loads the allow-listed fragments,
// all comparisons/ entries and all files/ entries. A missing or
// malformed container returns ErrInvalidArtifact; individual entries
// that cannot be read are logged and left absent for the caller to
// notice.
func Open(artifactPath string, logger zerolog.Logger) (*Bundle, error) {
	zr, err := zip.OpenReader(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, artifactPath, err)
	}
	defer zr.Close()

	allowed := make(map[string]string, len(FragmentNames))
	for _, name := range FragmentNames {
		allowed[name+".json"] = name
	}

	b := &Bundle{
		path:        artifactPath,
		fragments:   make(map[string][]byte),
		comparisons: make(map[string][]byte),
		sources:     make(map[string]map[string][]byte),
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(f.Name)

		switch {
		case allowed[name] != "":
			data, err := readEntry(f)
			if err != nil {
				logger.Warn().Str("entry", name).Err(err).Msg("Skipping unreadable fragment entry")
				continue
			}
			b.fragments[allowed[name]] = data

		case strings.HasPrefix(name, comparisonsPrefix) && strings.HasSuffix(name, ".json"):
			data, err := readEntry(f)
			if err != nil {
				logger.Warn().Str("entry", name).Err(err).Msg("Skipping unreadable comparison entry")
				continue
			}
			key := strings.TrimSuffix(strings.TrimPrefix(name, comparisonsPrefix), ".json")
			b.comparisons[key] = data

		case strings.HasPrefix(name, filesPrefix):
			rest := strings.TrimPrefix(name, filesPrefix)
			id, filename, ok := strings.Cut(rest, "/")
			if !ok || filename == "" {
				continue
			}
			data, err := readEntry(f)
			if err != nil {
				logger.Warn().Str("entry", name).Err(err).Msg("Skipping unreadable source entry")
				continue
			}
			if b.sources[id] == nil {
				b.sources[id] = make(map[string][]byte)
			}
			b.sources[id][filename] = data
		}
	}

	return b, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Path returns the archive location this bundle was opened from.
func (b *Bundle) Path() string {
	return b.path
}

// Fragment returns the raw bytes of an allow-listed fragment.
func (b *Bundle) Fragment(name string) ([]byte, bool) {
	data, ok := b.fragments[name]
	return data, ok
}

// ComparisonCount reports how many per-pair comparison entries the
// bundle carries.
func (b *Bundle) ComparisonCount() int {
	return len(b.comparisons)
}

// LookupComparison finds the per-pair fragment for (first, second),
// trying "first-second" then "second-first". reversed reports which
// orientation matched, duplicate that both orientations exist (the
// first-requested orientation wins in that case).
func (b *Bundle) LookupComparison(first, second string) (data []byte, reversed, duplicate, ok bool) {
	forward, fok := b.comparisons[first+"-"+second]
	backward, bok := b.comparisons[second+"-"+first]
	switch {
	case fok && bok:
		return forward, false, true, true
	case fok:
		return forward, false, false, true
	case bok:
		return backward, true, false, true
	}
	return nil, false, false, false
}

// SubmissionFiles returns the source files recorded for a submission,
// keyed by filename. The returned map must be treated as read-only.
func (b *Bundle) SubmissionFiles(id string) map[string][]byte {
	return b.sources[id]
}

// SubmissionLineCount counts source lines across every file of a
// submission. Zero when the bundle carries no sources for it.
func (b *Bundle) SubmissionLineCount(id string) int {
	total := 0
	for _, content := range b.sources[id] {
		total += countLines(content)
	}
	return total
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := strings.Count(string(content), "\n")
	if !strings.HasSuffix(string(content), "\n") {
		n++
	}
	return n
}
