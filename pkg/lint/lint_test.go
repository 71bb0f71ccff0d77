package lint_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/utcban/pkg/lint"
	"github.com/Sumatoshi-tech/utcban/pkg/observability"
	"github.com/Sumatoshi-tech/utcban/pkg/rules"
	"github.com/Sumatoshi-tech/utcban/pkg/syntax"
	"github.com/Sumatoshi-tech/utcban/pkg/syntax/python"
)

// writeTree creates files under a fresh temp dir and returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return dir
}

func rel(t *testing.T, dir string, paths []string) []string {
	t.Helper()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(dir, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}

	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"app/main.py":             "x = 1\n",
		"app/types.pyi":           "def f() -> int: ...\n",
		"app/README.md":           "# app\n",
		"app/__pycache__/main.py": "x = 1\n",
		"node_modules/pkg/lib.py": "x = 1\n",
		"build/gen.py":            "x = 1\n",
		"app/tool":                "#!/usr/bin/env python\nprint(1)\n",
		"app/notes":               "plain text\n",
		"app/clock/clock.py":      "x = 1\n",
	})

	linter := lint.New(lint.Options{Exclude: []string{"__pycache__", "build"}})

	files, err := linter.Discover([]string{dir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"app/clock/clock.py",
		"app/main.py",
		"app/tool",
		"app/types.pyi",
	}, rel(t, dir, files))
}

func TestDiscoverExplicitFilesAndDedup(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.txt": "utcnow()\n",
		"b.py":  "x = 1\n",
	})

	linter := lint.New(lint.Options{})

	files, err := linter.Discover([]string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.py"),
		dir,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.py"}, rel(t, dir, files))
}

func TestDiscoverErrors(t *testing.T) {
	t.Parallel()

	linter := lint.New(lint.Options{})

	_, err := linter.Discover(nil)
	require.ErrorIs(t, err, lint.ErrNoPaths)

	_, err = linter.Discover([]string{filepath.Join(t.TempDir(), "missing.py")})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunKeepsFileOrder(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.py": "import datetime\nnow = datetime.datetime.utcnow()\n",
		"b.py": "from datetime import datetime\nprint('ok')\n",
		"c.py": "def f(ts=utcfromtimestamp(0)):\n    return utcnow()\n",
	})

	linter := lint.New(lint.Options{Workers: 3})

	result, err := linter.Run(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, result.Files, 3)

	assert.Equal(t, []string{"a.py", "b.py", "c.py"}, rel(t, dir, []string{
		result.Files[0].Path, result.Files[1].Path, result.Files[2].Path,
	}))

	require.Len(t, result.Files[0].Diagnostics, 1)
	assert.Equal(t, 2, result.Files[0].Diagnostics[0].Line)
	assert.Equal(t, 6, result.Files[0].Diagnostics[0].Column)
	assert.Empty(t, result.Files[1].Diagnostics)

	codes := []string{result.Files[2].Diagnostics[0].Code, result.Files[2].Diagnostics[1].Code}
	assert.Equal(t, []string{rules.CodeUTCFromTimestamp, rules.CodeUTCNow}, codes)
	assert.Equal(t, 3, result.Count())
	assert.Empty(t, result.Failed())
}

func TestSelectAndIgnore(t *testing.T) {
	t.Parallel()

	src := []byte("a = utcnow()\nb = utcfromtimestamp(1)\n")

	only := lint.New(lint.Options{Select: []string{"UTC002"}}).CheckSource(context.Background(), "x.py", src)
	require.Len(t, only.Diagnostics, 1)
	assert.Equal(t, rules.CodeUTCFromTimestamp, only.Diagnostics[0].Code)

	ignored := lint.New(lint.Options{Ignore: []string{"UTC002"}}).CheckSource(context.Background(), "x.py", src)
	require.Len(t, ignored.Diagnostics, 1)
	assert.Equal(t, rules.CodeUTCNow, ignored.Diagnostics[0].Code)

	none := lint.New(lint.Options{Select: []string{"UTC"}, Ignore: []string{"UTC"}}).CheckSource(context.Background(), "x.py", src)
	assert.Empty(t, none.Diagnostics)
}

func TestCheckTree(t *testing.T) {
	t.Parallel()

	root := syntax.Call(syntax.At(1, 0), syntax.Name(syntax.At(1, 0), "utcnow"))

	diags := lint.New(lint.Options{}).CheckTree(root)
	require.Len(t, diags, 1)
	assert.Equal(t, rules.CodeUTCNow, diags[0].Code)
}

func TestLargeAndMissingFiles(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"big.py":   "x = utcnow()\n# padding padding padding padding\n",
		"small.py": "utcnow()\n",
	})

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewLintMetrics(reg)
	require.NoError(t, err)

	linter := lint.New(lint.Options{MaxFileSize: 20, Metrics: metrics})

	result, err := linter.CheckFiles(context.Background(), []string{
		filepath.Join(dir, "big.py"),
		filepath.Join(dir, "missing.py"),
		filepath.Join(dir, "small.py"),
	})
	require.NoError(t, err)

	assert.True(t, result.Files[0].Skipped)
	require.ErrorIs(t, result.Files[0].Err, lint.ErrFileTooLarge)
	require.ErrorIs(t, result.Files[1].Err, os.ErrNotExist)
	assert.Len(t, result.Files[2].Diagnostics, 1)
	assert.Len(t, result.Failed(), 1)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Files.WithLabelValues(observability.StatusSkipped)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Files.WithLabelValues(observability.StatusFailed)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Files.WithLabelValues(observability.StatusChecked)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Diagnostics.WithLabelValues(rules.CodeUTCNow)), 0)
}

func TestBinaryFileSkipped(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"blob.py": "utcnow()\x00\x01\x02\n"})

	result, err := lint.New(lint.Options{}).CheckFiles(context.Background(), []string{filepath.Join(dir, "blob.py")})
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Skipped)
	require.ErrorIs(t, result.Files[0].Err, lint.ErrBinaryFile)
	assert.Empty(t, result.Failed())
	assert.Zero(t, result.Count())
}

func TestCanceledRun(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a.py": "utcnow()\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lint.New(lint.Options{}).CheckFiles(ctx, []string{filepath.Join(dir, "a.py")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCheckSourceLogsTreeSize(t *testing.T) {
	t.Parallel()

	src := []byte("stamp = utcnow()\n")

	root, err := python.NewParser().Parse(context.Background(), src)
	require.NoError(t, err)

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res := lint.New(lint.Options{Logger: logger}).CheckSource(context.Background(), "stamp.py", src)
	require.Len(t, res.Diagnostics, 1)

	assert.Contains(t, buf.String(), "file parsed")
	assert.Contains(t, buf.String(), fmt.Sprintf("nodes=%d", syntax.Count(root)))
}
