package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Sumatoshi-tech/utcban/pkg/config"
	"github.com/Sumatoshi-tech/utcban/pkg/lint"
	"github.com/Sumatoshi-tech/utcban/pkg/observability"
	"github.com/Sumatoshi-tech/utcban/pkg/report"
	"github.com/Sumatoshi-tech/utcban/pkg/syntax"
)

// Sentinel errors for the check command.
var (
	// errFindings signals a completed run that found problems; main exits
	// non-zero without printing it.
	errFindings       = errors.New("banned APIs found")
	errTreeWithPaths  = errors.New("--tree cannot be combined with paths")
	errTreeWithWatch  = errors.New("--tree cannot be combined with --watch")
	errNothingToCheck = errors.New("no paths given; pass files or directories, or --tree")
)

type checkFlags struct {
	format      string
	maxFileSize string
	metricsOut  string
	treePath    string
	selectCodes []string
	ignore      []string
	exclude     []string
	workers     int
	color       bool
	noColor     bool
	watch       bool
}

func checkCmd(root *rootFlags) *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check Python files for banned datetime APIs",
		Long: `Check Python files and directories for uses of datetime.utcnow() and
datetime.utcfromtimestamp().

Directories are walked recursively; vendored and excluded directories are
skipped. The exit status is 1 when anything was reported.

Examples:
  utcban check app/                     # Check a source tree
  utcban check -f json app/ > out.json  # JSON output
  utcban check --ignore UTC002 app/     # Skip utcfromtimestamp
  utcban check --watch app/             # Re-check files as they change
  utcban tree app/x.py | utcban check --tree -   # Check a prebuilt tree`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", config.FormatText, "output format (text, json, table)")
	cmd.Flags().StringSliceVar(&flags.selectCodes, "select", nil, "only report these rule codes or prefixes")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "do not report these rule codes or prefixes")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob patterns of files and directories to skip")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", 0, "parallel workers (default: number of CPUs)")
	cmd.Flags().StringVar(&flags.maxFileSize, "max-file-size", "", "skip files larger than this, e.g. 512KiB (0 disables)")
	cmd.Flags().StringVar(&flags.metricsOut, "metrics-out", "", "write Prometheus metrics to this file")
	cmd.Flags().StringVar(&flags.treePath, "tree", "", "check a JSON syntax tree file ('-' for stdin) instead of sources")
	cmd.Flags().BoolVar(&flags.color, "color", false, "force colored output")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "keep running and re-check files when they change")

	return cmd
}

func runCheck(cmd *cobra.Command, root *rootFlags, flags *checkFlags, args []string) error {
	cfg, err := config.LoadConfig(root.cfgFile)
	if err != nil {
		return err
	}

	err = applyCheckFlags(cmd, cfg, flags)
	if err != nil {
		return err
	}

	if flags.watch && flags.treePath != "" {
		return errTreeWithWatch
	}

	logger, err := newLogger(cmd.ErrOrStderr(), root, cfg)
	if err != nil {
		return err
	}

	var registry *prometheus.Registry

	var metrics *observability.LintMetrics

	if flags.metricsOut != "" {
		registry = prometheus.NewRegistry()

		metrics, err = observability.NewLintMetrics(registry)
		if err != nil {
			return err
		}
	}

	maxSize, err := cfg.Lint.MaxFileSizeBytes()
	if err != nil {
		return err
	}

	linter := lint.New(lint.Options{
		Logger:      logger,
		Metrics:     metrics,
		Select:      cfg.Lint.Select,
		Ignore:      cfg.Lint.Ignore,
		Exclude:     cfg.Lint.Exclude,
		MaxFileSize: maxSize,
		Workers:     cfg.Lint.Workers,
	})

	result, err := lintInputs(cmd.Context(), linter, flags.treePath, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	reportOpts := report.Options{
		Format: cfg.Output.Format,
		Color:  useColor(cfg.Output.Color, cmd.OutOrStdout()),
	}

	if !root.quiet {
		err = report.Write(cmd.OutOrStdout(), result, reportOpts)
		if err != nil {
			return err
		}
	}

	if root.verbose && !root.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), report.Summary(result))
	}

	if registry != nil {
		err = observability.WriteTextfile(flags.metricsOut, registry)
		if err != nil {
			return err
		}
	}

	if flags.watch {
		return linter.Watch(cmd.Context(), args, func(batch *lint.Result) {
			if root.quiet {
				return
			}

			writeErr := report.Write(cmd.OutOrStdout(), batch, reportOpts)
			if writeErr != nil {
				logger.Error("cannot write report", slog.Any("error", writeErr))
			}
		})
	}

	if result.Count() > 0 || len(result.Failed()) > 0 {
		return errFindings
	}

	return nil
}

func lintInputs(ctx context.Context, linter *lint.Linter, treePath string, args []string, stdin io.Reader) (*lint.Result, error) {
	if treePath == "" {
		if len(args) == 0 {
			return nil, errNothingToCheck
		}

		return linter.Run(ctx, args)
	}

	if len(args) > 0 {
		return nil, errTreeWithPaths
	}

	input, label, err := openInput(treePath, stdin)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	tree, err := syntax.ReadJSON(input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	return &lint.Result{Files: []lint.FileResult{
		{Path: label, Diagnostics: linter.CheckTree(tree)},
	}}, nil
}

// applyCheckFlags overrides configuration with flags set on the command line.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config, flags *checkFlags) error {
	changed := cmd.Flags().Changed

	if changed("format") {
		cfg.Output.Format = flags.format
	}

	if changed("select") {
		cfg.Lint.Select = flags.selectCodes
	}

	if changed("ignore") {
		cfg.Lint.Ignore = append(cfg.Lint.Ignore, flags.ignore...)
	}

	if changed("exclude") {
		cfg.Lint.Exclude = append(cfg.Lint.Exclude, flags.exclude...)
	}

	if changed("workers") {
		cfg.Lint.Workers = flags.workers
	}

	if changed("max-file-size") {
		cfg.Lint.MaxFileSize = flags.maxFileSize
	}

	switch {
	case flags.noColor:
		cfg.Output.Color = config.ColorNever
	case flags.color:
		cfg.Output.Color = config.ColorAlways
	}

	err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	return nil
}

func newLogger(w io.Writer, root *rootFlags, cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level

	switch {
	case root.quiet:
		level = "error"
	case root.verbose:
		level = "debug"
	}

	logger, err := observability.NewLogger(w, level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

// useColor resolves a color mode. Auto colors only a terminal, and honors
// NO_COLOR through fatih/color.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}

	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
