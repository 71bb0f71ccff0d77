// Package report renders lint results and the rule catalog.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/utcban/pkg/lint"
)

// Supported output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
	FormatYAML  = "yaml"
)

// ErrUnsupportedFormat is returned for unknown output formats.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Options controls rendering.
type Options struct {
	Format string
	Color  bool
}

// Entry is one diagnostic flattened with its file path.
type Entry struct {
	Path     string `json:"path"`
	Code     string `json:"code"`
	Symbol   string `json:"symbol"`
	Message  string `json:"message"`
	Reporter string `json:"reporter"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Entries flattens a lint result in file order, then traversal order.
func Entries(result *lint.Result) []Entry {
	var entries []Entry

	for _, file := range result.Files {
		for _, diag := range file.Diagnostics {
			entries = append(entries, Entry{
				Path:     file.Path,
				Line:     diag.Line,
				Column:   diag.Column,
				Code:     diag.Code,
				Symbol:   diag.Symbol,
				Message:  diag.Message,
				Reporter: diag.Reporter,
			})
		}
	}

	return entries
}

// Write renders result to w in the requested format.
func Write(w io.Writer, result *lint.Result, opts Options) error {
	switch opts.Format {
	case "", FormatText:
		return writeText(w, result, opts.Color)
	case FormatJSON:
		return writeJSON(w, result)
	case FormatTable:
		return writeTable(w, result)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, opts.Format)
	}
}

// writeText prints one flake8-style line per diagnostic: path:line:col: message.
// Columns are printed 1-based.
func writeText(w io.Writer, result *lint.Result, colorize bool) error {
	pathColor := color.New(color.Bold)
	codeColor := color.New(color.FgRed, color.Bold)

	if colorize {
		pathColor.EnableColor()
		codeColor.EnableColor()
	} else {
		pathColor.DisableColor()
		codeColor.DisableColor()
	}

	for _, entry := range Entries(result) {
		code, rest, _ := strings.Cut(entry.Message, " ")

		_, err := fmt.Fprintf(w, "%s:%d:%d: %s %s\n",
			pathColor.Sprint(entry.Path), entry.Line, entry.Column+1, codeColor.Sprint(code), rest)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	return nil
}

type jsonReport struct {
	Diagnostics []Entry     `json:"diagnostics"`
	Errors      []jsonError `json:"errors,omitempty"`
	Files       int         `json:"files"`
}

type jsonError struct {
	Path    string `json:"path"`
	Error   string `json:"error"`
	Skipped bool   `json:"skipped,omitempty"`
}

func writeJSON(w io.Writer, result *lint.Result) error {
	out := jsonReport{
		Files:       len(result.Files),
		Diagnostics: Entries(result),
	}

	if out.Diagnostics == nil {
		out.Diagnostics = []Entry{}
	}

	for _, file := range result.Files {
		if file.Err != nil {
			out.Errors = append(out.Errors, jsonError{Path: file.Path, Error: file.Err.Error(), Skipped: file.Skipped})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(out)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return nil
}

func writeTable(w io.Writer, result *lint.Result) error {
	entries := Entries(result)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Line", "Col", "Code", "Message"})

	for _, entry := range entries {
		_, rest, _ := strings.Cut(entry.Message, " ")
		tbl.AppendRow(table.Row{entry.Path, entry.Line, entry.Column + 1, entry.Code, rest})
	}

	tbl.AppendFooter(table.Row{"Total", "", "", "", strconv.Itoa(len(entries))})

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// Summary returns a one-line human summary of a run.
func Summary(result *lint.Result) string {
	files := int64(len(result.Files))
	found := int64(result.Count())

	noun := "diagnostics"
	if found == 1 {
		noun = "diagnostic"
	}

	summary := fmt.Sprintf("%s %s in %s files", humanize.Comma(found), noun, humanize.Comma(files))

	if failed := len(result.Failed()); failed > 0 {
		summary += fmt.Sprintf(", %s not checked", humanize.Comma(int64(failed)))
	}

	return summary
}
