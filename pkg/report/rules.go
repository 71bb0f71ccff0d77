package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/utcban/pkg/rules"
)

// WriteRules lists the rule catalog in table, JSON or YAML form.
func WriteRules(w io.Writer, format string) error {
	syms := rules.All()

	switch format {
	case "", FormatTable, FormatText:
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.AppendHeader(table.Row{"Code", "Symbol", "Use instead"})

		for _, sym := range syms {
			tbl.AppendRow(table.Row{sym.Code, rules.Namespace + "." + sym.Name, sym.Replacement})
		}

		_, err := fmt.Fprintln(w, tbl.Render())
		if err != nil {
			return fmt.Errorf("write rules: %w", err)
		}

		return nil

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(syms)
		if err != nil {
			return fmt.Errorf("encode rules: %w", err)
		}

		return nil

	case FormatYAML:
		data, err := yaml.Marshal(syms)
		if err != nil {
			return fmt.Errorf("marshal rules: %w", err)
		}

		_, err = w.Write(data)
		if err != nil {
			return fmt.Errorf("write rules: %w", err)
		}

		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
