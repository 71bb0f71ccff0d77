// Package main generates JSON schemas for the records utcban prints in JSON form.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/Sumatoshi-tech/utcban/pkg/report"
	"github.com/Sumatoshi-tech/utcban/pkg/rules"
)

const draft07 = "http://json-schema.org/draft-07/schema#"

// Schema represents a JSON Schema.
type Schema struct {
	Schema      string             `json:"$schema,omitempty"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Type        string             `json:"type,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// record is one generated schema file.
type record struct {
	value       any
	title       string
	description string
}

func records() map[string]record {
	return map[string]record{
		"diagnostic": {
			value:       report.Entry{},
			title:       "utcban diagnostic",
			description: "One entry of the diagnostics array printed by `utcban check -f json`",
		},
		"rule": {
			value:       rules.Symbol{},
			title:       "utcban rule",
			description: "One entry of the array printed by `utcban rules -f json`",
		},
	}
}

func main() {
	outputDir := flag.String("o", "docs/schemas", "output directory for schemas")
	flag.Parse()

	err := run(*outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(outputDir string) error {
	err := os.MkdirAll(outputDir, 0o750)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for name, rec := range records() {
		err = writeSchema(filepath.Join(outputDir, name+".json"), generateSchema(rec))
		if err != nil {
			return fmt.Errorf("schema %s: %w", name, err)
		}
	}

	return nil
}

func generateSchema(rec record) *Schema {
	schema := typeToSchema(reflect.TypeOf(rec.value))
	schema.Schema = draft07
	schema.Title = rec.title
	schema.Description = rec.description

	return schema
}

func structToProperties(t reflect.Type) (map[string]*Schema, []string) {
	props := make(map[string]*Schema)

	var required []string

	for i := range t.NumField() {
		field := t.Field(i)

		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		props[name] = typeToSchema(field.Type)

		if !strings.Contains(opts, "omitempty") {
			required = append(required, name)
		}
	}

	return props, required
}

func typeToSchema(t reflect.Type) *Schema {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Slice:
		return &Schema{Type: "array", Items: typeToSchema(t.Elem())}
	case reflect.Struct:
		props, required := structToProperties(t)

		return &Schema{Type: "object", Properties: props, Required: required}
	case reflect.Pointer:
		return typeToSchema(t.Elem())
	default:
		return &Schema{Type: "object"}
	}
}

func writeSchema(path string, schema *Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	err = os.WriteFile(path, append(data, '\n'), 0o600)
	if err != nil {
		return fmt.Errorf("write schema: %w", err)
	}

	return nil
}
