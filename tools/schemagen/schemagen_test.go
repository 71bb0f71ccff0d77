package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/utcban/pkg/lint"
	"github.com/Sumatoshi-tech/utcban/pkg/report"
	"github.com/Sumatoshi-tech/utcban/pkg/syntax"
)

func TestGenerateDiagnosticSchema(t *testing.T) {
	t.Parallel()

	schema := generateSchema(records()["diagnostic"])

	assert.Equal(t, draft07, schema.Schema)
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, "integer", schema.Properties["line"].Type)
	assert.Equal(t, "string", schema.Properties["code"].Type)
	assert.ElementsMatch(t, []string{"path", "code", "symbol", "message", "reporter", "line", "column"}, schema.Required)
}

func TestReportOutputMatchesSchema(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, run(dir))

	schemaJSON, err := os.ReadFile(filepath.Join(dir, "diagnostic.json"))
	require.NoError(t, err)

	linter := lint.New(lint.Options{})
	tree := syntax.Call(syntax.At(1, 0), syntax.Name(syntax.At(1, 0), "utcnow"))
	result := &lint.Result{Files: []lint.FileResult{{Path: "app/a.py", Diagnostics: linter.CheckTree(tree)}}}

	var buf bytes.Buffer

	require.NoError(t, report.Write(&buf, result, report.Options{Format: report.FormatJSON}))

	var out struct {
		Diagnostics []json.RawMessage `json:"diagnostics"`
	}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Diagnostics, 1)

	res, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(out.Diagnostics[0]),
	)
	require.NoError(t, err)
	assert.True(t, res.Valid(), res.Errors())
}

func TestRunWritesEverySchema(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, run(dir))

	for name := range records() {
		assert.FileExists(t, filepath.Join(dir, name+".json"))
	}
}
