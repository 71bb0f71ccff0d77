// Package lint runs the banned datetime API checker over Python files.
//
// It is the host side of the checker: it finds files, parses them, filters
// diagnostics by rule code and keeps results in a deterministic order.
package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/src-d/enry/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/utcban/pkg/checker"
	"github.com/Sumatoshi-tech/utcban/pkg/observability"
	"github.com/Sumatoshi-tech/utcban/pkg/syntax"
	"github.com/Sumatoshi-tech/utcban/pkg/syntax/python"
)

// Errors recorded for files that are skipped rather than checked.
var (
	ErrFileTooLarge = errors.New("file exceeds max file size")
	ErrBinaryFile   = errors.New("file is binary")
)

const tracerName = "github.com/Sumatoshi-tech/utcban/pkg/lint"

// Options configures a Linter.
type Options struct {
	Logger  *slog.Logger
	Metrics *observability.LintMetrics
	Select  []string
	Ignore  []string
	Exclude []string
	// MaxFileSize skips larger files; zero means unlimited.
	MaxFileSize uint64
	// Workers bounds parallelism; zero or less means GOMAXPROCS.
	Workers int
}

// FileResult is the outcome of checking one file.
type FileResult struct {
	Err         error
	Path        string
	Diagnostics []checker.Diagnostic
	Skipped     bool
}

// Result is the outcome of a lint run. Files keep the order they were given in.
type Result struct {
	Files []FileResult
}

// Count returns the total number of diagnostics.
func (r *Result) Count() int {
	total := 0
	for _, file := range r.Files {
		total += len(file.Diagnostics)
	}

	return total
}

// Failed returns the files that could not be checked.
func (r *Result) Failed() []FileResult {
	var failed []FileResult

	for _, file := range r.Files {
		if file.Err != nil && !file.Skipped {
			failed = append(failed, file)
		}
	}

	return failed
}

// Linter checks Python files for banned datetime APIs. It is safe for concurrent use.
type Linter struct {
	parser *python.Parser
	logger *slog.Logger
	opts   Options
}

// New creates a Linter.
func New(opts Options) *Linter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Linter{
		parser: python.NewParser(),
		logger: logger,
		opts:   opts,
	}
}

// Run discovers the Python files under paths and checks them.
func (l *Linter) Run(ctx context.Context, paths []string) (*Result, error) {
	files, err := l.Discover(paths)
	if err != nil {
		return nil, err
	}

	return l.CheckFiles(ctx, files)
}

// CheckFiles checks files in parallel. Per-file failures are recorded in the
// result; only cancellation of ctx aborts the run.
func (l *Linter) CheckFiles(ctx context.Context, files []string) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "utcban.lint")
	defer span.End()

	span.SetAttributes(attribute.Int("utcban.files", len(files)))

	started := time.Now()
	results := make([]FileResult, len(files))

	workers := l.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(workers, len(files))))

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			results[i] = l.CheckFile(gctx, path)

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("lint canceled: %w", err)
	}

	result := &Result{Files: results}

	span.SetAttributes(attribute.Int("utcban.diagnostics", result.Count()))
	l.logger.DebugContext(ctx, "lint finished",
		slog.Int("files", len(files)),
		slog.Int("diagnostics", result.Count()),
		slog.Duration("elapsed", time.Since(started)))

	return result, nil
}

// CheckFile reads and checks a single file.
func (l *Linter) CheckFile(ctx context.Context, path string) FileResult {
	info, err := os.Stat(path)
	if err != nil {
		return l.failed(ctx, path, fmt.Errorf("stat %s: %w", path, err))
	}

	size := uint64(max(info.Size(), 0))
	if l.opts.MaxFileSize > 0 && size > l.opts.MaxFileSize {
		l.logger.InfoContext(ctx, "skipping large file", slog.String("path", path), slog.Uint64("size", size))

		return l.skipped(path, ErrFileTooLarge)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return l.failed(ctx, path, fmt.Errorf("failed to read file %s: %w", path, err))
	}

	if enry.IsBinary(content) {
		l.logger.InfoContext(ctx, "skipping binary file", slog.String("path", path))

		return l.skipped(path, ErrBinaryFile)
	}

	return l.CheckSource(ctx, path, content)
}

func (l *Linter) skipped(path string, reason error) FileResult {
	l.opts.Metrics.FileDone(observability.StatusSkipped)

	return FileResult{
		Path:    path,
		Skipped: true,
		Err:     fmt.Errorf("%w: %s", reason, path),
	}
}

// CheckSource parses content as Python and checks it. path is only used for reporting.
func (l *Linter) CheckSource(ctx context.Context, path string, content []byte) FileResult {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "utcban.file")
	defer span.End()

	span.SetAttributes(attribute.String("utcban.path", path))

	parseStart := time.Now()

	root, err := l.parser.Parse(ctx, content)

	parseTime := time.Since(parseStart)
	l.opts.Metrics.ObserveParse(parseTime.Seconds())

	if err != nil {
		span.RecordError(err)

		return l.failed(ctx, path, fmt.Errorf("parse error in %s: %w", path, err))
	}

	if l.logger.Enabled(ctx, slog.LevelDebug) {
		l.logger.DebugContext(ctx, "file parsed",
			slog.String("path", path),
			slog.Int("nodes", syntax.Count(root)),
			slog.Duration("parse", parseTime),
		)
	}

	res := FileResult{Path: path, Diagnostics: l.CheckTree(root)}
	l.opts.Metrics.FileDone(observability.StatusChecked)

	return res
}

// CheckTree runs the checker over an already parsed tree and applies code filtering.
func (l *Linter) CheckTree(root *syntax.Node) []checker.Diagnostic {
	var kept []checker.Diagnostic

	for diag := range checker.Diagnostics(root) {
		if !l.enabled(diag.Code) {
			continue
		}

		l.opts.Metrics.Reported(diag.Code)

		kept = append(kept, diag)
	}

	return kept
}

func (l *Linter) failed(ctx context.Context, path string, err error) FileResult {
	l.opts.Metrics.FileDone(observability.StatusFailed)
	l.logger.WarnContext(ctx, "file not checked", slog.String("path", path), slog.Any("error", err))

	return FileResult{Path: path, Err: err}
}

// enabled applies select and ignore lists; entries match code prefixes.
func (l *Linter) enabled(code string) bool {
	if len(l.opts.Select) > 0 && !hasPrefix(code, l.opts.Select) {
		return false
	}

	return !hasPrefix(code, l.opts.Ignore)
}

func hasPrefix(code string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if p := strings.TrimSpace(prefix); p != "" && strings.HasPrefix(code, p) {
			return true
		}
	}

	return false
}
