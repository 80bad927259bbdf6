// Package engine assembles a full analysis report from an analyzer
// result artifact. It is the single entry point the CLI and the HTTP
// API share.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/avasile/crosscheck/pkg/analyzer/clusters"
	"github.com/avasile/crosscheck/pkg/analyzer/comparisons"
	"github.com/avasile/crosscheck/pkg/analyzer/distribution"
	"github.com/avasile/crosscheck/pkg/analyzer/submissions"
	"github.com/avasile/crosscheck/pkg/artifact"
	"github.com/avasile/crosscheck/pkg/config"
)

// Report is the complete, immutable analysis result.
type Report struct {
	AnalysisID  string    `json:"analysis_id"`
	GeneratedAt time.Time `json:"generated_at"`
	DurationMS  int64     `json:"duration_ms"`

	Submissions          []submissions.Record  `json:"submissions"`
	Comparisons          []comparisons.Summary `json:"comparisons"`
	Clusters             []clusters.Record     `json:"clusters"`
	Distribution         distribution.Summary  `json:"distribution"`
	LanguageDistribution map[string]int        `json:"language_distribution"`

	TotalComparisons   int `json:"total_comparisons"`
	DroppedComparisons int `json:"dropped_comparisons,omitempty"`

	// FailedFragments lists bundle fragments that were missing or
	// unparseable; the report degrades rather than fails when any of
	// them is gone.
	FailedFragments   []string                    `json:"failed_fragments,omitempty"`
	FailedSubmissions []artifact.FailedSubmission `json:"failed_submissions,omitempty"`

	RunDuration     int64  `json:"run_duration_ms,omitempty"`
	DateOfExecution string `json:"date_of_execution,omitempty"`

	// Options echoes the analyzer's own options fragment verbatim.
	Options json.RawMessage `json:"options,omitempty"`
}

// Engine turns artifacts into reports.
type Engine struct {
	cfg        *config.Config
	logger     zerolog.Logger
	onProgress func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithProgress registers a callback invoked once per fragment after it
// is decoded or recorded as failed. Must be safe for concurrent use.
func WithProgress(fn func()) Option {
	return func(e *Engine) { e.onProgress = fn }
}

// New creates an engine.
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fragments collects the decoded bundle fragments produced by the
// parallel parse stage. Guarded by mu; failed holds fragment names that
// were missing or failed to decode.
type fragments struct {
	mu sync.Mutex

	top       []artifact.TopComparison
	dropped   int
	run       *artifact.RunInformation
	mappings  *artifact.SubmissionMappings
	fileIndex artifact.FileIndex
	dist      *artifact.Distribution
	clusters  []artifact.Cluster
	options   json.RawMessage
	failed    []string
}

var errInvalidOptions = errors.New("options: invalid json")

func (f *fragments) fail(name string) {
	f.mu.Lock()
	f.failed = append(f.failed, name)
	f.mu.Unlock()
}

// Analyze opens the artifact at path and assembles a report. An archive
// that cannot be opened returns artifact.ErrInvalidArtifact; a single
// broken fragment only degrades the report. Cancellation of ctx aborts
// the whole analysis with no partial result.
func (e *Engine) Analyze(ctx context.Context, artifactPath string) (*Report, error) {
	start := time.Now()

	bundle, err := artifact.Open(artifactPath, e.logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frags := e.decodeFragments(ctx, bundle)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		AnalysisID:  uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}

	index := submissions.Build(orEmptyMappings(frags.mappings), frags.fileIndex, bundle)
	report.Submissions = index.Records()
	report.LanguageDistribution = distribution.Languages(index)

	report.Comparisons = comparisons.Summaries(frags.top)
	report.DroppedComparisons = frags.dropped
	set := comparisons.NewSet(report.Comparisons)

	var rawDist json.RawMessage
	if frags.dist != nil {
		rawDist = frags.dist.Buckets
	}
	report.Distribution = distribution.Compute(report.Comparisons, e.cfg.Engine.HistogramBuckets, rawDist)

	thresholds := clusters.Thresholds{High: e.cfg.Risk.High, Medium: e.cfg.Risk.Medium}
	report.Clusters = clusters.Analyze(frags.clusters, index, set, thresholds, e.logger)

	report.TotalComparisons = bundle.ComparisonCount()
	if frags.run != nil {
		if frags.run.TotalComparisons > 0 {
			report.TotalComparisons = frags.run.TotalComparisons
		}
		report.RunDuration = frags.run.Duration
		report.DateOfExecution = frags.run.DateOfExecution
		report.FailedSubmissions = frags.run.FailedSubmissions
	}

	report.Options = frags.options

	sort.Strings(frags.failed)
	report.FailedFragments = frags.failed
	report.DurationMS = time.Since(start).Milliseconds()

	e.logger.Info().
		Str("analysis_id", report.AnalysisID).
		Int("submissions", len(report.Submissions)).
		Int("comparisons", len(report.Comparisons)).
		Int("clusters", len(report.Clusters)).
		Strs("failed_fragments", report.FailedFragments).
		Int64("duration_ms", report.DurationMS).
		Msg("Analysis complete")

	return report, nil
}

// decodeFragments parses every allow-listed fragment concurrently.
// Worker count comes from the engine config; zero means one goroutine
// per fragment.
func (e *Engine) decodeFragments(ctx context.Context, bundle *artifact.Bundle) *fragments {
	frags := &fragments{}

	decoders := map[string]func([]byte) error{
		artifact.FragmentTopComparisons: func(data []byte) error {
			top, dropped, err := artifact.DecodeTopComparisons(data)
			if err != nil {
				return err
			}
			frags.mu.Lock()
			frags.top, frags.dropped = top, dropped
			frags.mu.Unlock()
			if dropped > 0 {
				e.logger.Warn().Int("dropped", dropped).Msg("Dropped malformed comparison summaries")
			}
			return nil
		},
		artifact.FragmentRunInformation: func(data []byte) error {
			run, err := artifact.DecodeRunInformation(data)
			if err != nil {
				return err
			}
			frags.mu.Lock()
			frags.run = run
			frags.mu.Unlock()
			return nil
		},
		artifact.FragmentMappings: func(data []byte) error {
			m, err := artifact.DecodeSubmissionMappings(data)
			if err != nil {
				return err
			}
			frags.mu.Lock()
			frags.mappings = m
			frags.mu.Unlock()
			return nil
		},
		artifact.FragmentFileIndex: func(data []byte) error {
			fi, err := artifact.DecodeFileIndex(data)
			if err != nil {
				return err
			}
			frags.mu.Lock()
			frags.fileIndex = fi
			frags.mu.Unlock()
			return nil
		},
		artifact.FragmentDistribution: func(data []byte) error {
			d, err := artifact.DecodeDistribution(data)
			if err != nil {
				return err
			}
			frags.mu.Lock()
			frags.dist = d
			frags.mu.Unlock()
			return nil
		},
		artifact.FragmentCluster: func(data []byte) error {
			cl, err := artifact.DecodeClusters(data)
			if err != nil {
				return err
			}
			frags.mu.Lock()
			frags.clusters = cl
			frags.mu.Unlock()
			return nil
		},
		artifact.FragmentOptions: func(data []byte) error {
			if !json.Valid(data) {
				return errInvalidOptions
			}
			frags.mu.Lock()
			frags.options = json.RawMessage(data)
			frags.mu.Unlock()
			return nil
		},
	}

	workers := e.cfg.Engine.Workers
	if workers <= 0 {
		workers = len(artifact.FragmentNames)
	}

	p := pool.New().WithMaxGoroutines(workers)
	for _, name := range artifact.FragmentNames {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			if e.onProgress != nil {
				defer e.onProgress()
			}
			data, ok := bundle.Fragment(name)
			if !ok {
				frags.fail(name)
				return
			}
			if err := decoders[name](data); err != nil {
				e.logger.Warn().Str("fragment", name).Err(err).Msg("Fragment failed to parse")
				frags.fail(name)
			}
		})
	}
	p.Wait()

	return frags
}

// Comparison loads the detailed view of one compared pair from the
// artifact at path. A pair without a per-pair fragment returns
// comparisons.ErrNotFound.
func (e *Engine) Comparison(ctx context.Context, artifactPath, first, second string) (*comparisons.Detail, error) {
	bundle, err := artifact.Open(artifactPath, e.logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return comparisons.NewCorrelator(bundle, e.logger).Detail(first, second)
}

func orEmptyMappings(m *artifact.SubmissionMappings) *artifact.SubmissionMappings {
	if m == nil {
		return &artifact.SubmissionMappings{IDToDisplayName: map[string]string{}}
	}
	return m
}
