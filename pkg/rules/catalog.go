// Package rules holds the catalog of banned datetime APIs and their diagnostics.
package rules

import (
	"maps"
	"slices"
	"strings"
)

// Namespace is the base name that must qualify a banned attribute access.
const Namespace = "datetime"

// Symbol describes one banned API name.
type Symbol struct {
	Name        string `json:"name"        yaml:"name"`
	Code        string `json:"code"        yaml:"code"`
	Message     string `json:"message"     yaml:"message"`
	Description string `json:"description" yaml:"description"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// Rule codes.
const (
	CodeUTCNow           = "UTC001"
	CodeUTCFromTimestamp = "UTC002"
)

var catalog = map[string]Symbol{ //nolint:gochecknoglobals // immutable rule table
	"utcnow": {
		Name: "utcnow",
		Code: CodeUTCNow,
		Message: "UTC001 don't use datetime.datetime.utcnow(), " +
			"use datetime.datetime.now(datetime.timezone.utc) instead " +
			"or datetime.now(datetime.UTC) on >= 3.11.",
		Description: "utcnow() returns a naive datetime that is silently treated as local time",
		Replacement: "datetime.datetime.now(datetime.timezone.utc)",
	},
	"utcfromtimestamp": {
		Name: "utcfromtimestamp",
		Code: CodeUTCFromTimestamp,
		Message: "UTC002 don't use datetime.datetime.utcfromtimestamp(), " +
			"use datetime.datetime.fromtimestamp(..., tz=datetime.timezone.utc) instead " +
			"or datetime.datetime.fromtimestamp(..., tz=datetime.UTC) on >= 3.11.",
		Description: "utcfromtimestamp() returns a naive datetime that is silently treated as local time",
		Replacement: "datetime.datetime.fromtimestamp(..., tz=datetime.timezone.utc)",
	},
}

// Lookup returns the banned symbol registered under name.
// Matching is exact and case-sensitive.
func Lookup(name string) (Symbol, bool) {
	sym, ok := catalog[name]

	return sym, ok
}

// All returns every banned symbol ordered by rule code.
func All() []Symbol {
	syms := slices.Collect(maps.Values(catalog))
	slices.SortFunc(syms, func(a, b Symbol) int {
		return strings.Compare(a.Code, b.Code)
	})

	return syms
}

// Codes returns the known rule codes in ascending order.
func Codes() []string {
	codes := make([]string, 0, len(catalog))
	for _, sym := range All() {
		codes = append(codes, sym.Code)
	}

	return codes
}

// KnownCode reports whether code, or a prefix of it such as "UTC", names a catalog rule.
func KnownCode(code string) bool {
	if code == "" {
		return false
	}

	for _, sym := range catalog {
		if strings.HasPrefix(sym.Code, code) {
			return true
		}
	}

	return false
}
