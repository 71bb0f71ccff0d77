// Package checker finds uses of banned datetime APIs in a syntax tree.
//
// The tree is walked once in pre-order. Two shapes are recognized:
//
//   - a call whose callee is a bare name from the catalog, e.g. utcnow();
//   - an attribute access of a catalog name whose base is the datetime
//     namespace, either as a name (datetime.utcnow) or as an attribute
//     (datetime.datetime.utcnow), whether or not it is called.
//
// Matching is lexical: aliases such as "import datetime as dt" are not resolved.
package checker

import (
	"iter"

	"github.com/Sumatoshi-tech/utcban/pkg/rules"
	"github.com/Sumatoshi-tech/utcban/pkg/syntax"
)

// Reporter identifies this checker in emitted diagnostics.
const Reporter = "utcban"

// Diagnostic is one reported occurrence of a banned API.
type Diagnostic struct {
	Message  string `json:"message"`
	Code     string `json:"code"`
	Symbol   string `json:"symbol"`
	Reporter string `json:"reporter"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Diagnostics returns a lazy sequence of diagnostics for root in traversal order.
// Each range over the sequence walks the tree afresh.
func Diagnostics(root *syntax.Node) iter.Seq[Diagnostic] {
	return func(yield func(Diagnostic) bool) {
		syntax.Walk(root, func(n *syntax.Node) bool {
			sym, ok := match(n)
			if !ok {
				return true
			}

			return yield(newDiagnostic(n, sym))
		})
	}
}

// Check collects every diagnostic for root.
func Check(root *syntax.Node) []Diagnostic {
	var out []Diagnostic

	for diag := range Diagnostics(root) {
		out = append(out, diag)
	}

	return out
}

func match(n *syntax.Node) (rules.Symbol, bool) {
	switch n.Kind {
	case syntax.KindCall:
		return matchCall(n)
	case syntax.KindAttribute:
		return matchAttribute(n)
	case syntax.KindName, syntax.KindOther:
		return rules.Symbol{}, false
	default:
		return rules.Symbol{}, false
	}
}

// matchCall recognizes utcnow().
func matchCall(n *syntax.Node) (rules.Symbol, bool) {
	callee := n.Callee()
	if callee == nil || callee.Kind != syntax.KindName {
		return rules.Symbol{}, false
	}

	return rules.Lookup(callee.Name)
}

// matchAttribute recognizes datetime.utcnow and <x>.datetime.utcnow.
func matchAttribute(n *syntax.Node) (rules.Symbol, bool) {
	sym, ok := rules.Lookup(n.Name)
	if !ok {
		return rules.Symbol{}, false
	}

	base := n.Base()
	if base.IsName(rules.Namespace) || base.IsAttribute(rules.Namespace) {
		return sym, true
	}

	return rules.Symbol{}, false
}

func newDiagnostic(n *syntax.Node, sym rules.Symbol) Diagnostic {
	return Diagnostic{
		Line:     n.Pos.Line,
		Column:   n.Pos.Column,
		Message:  sym.Message,
		Code:     sym.Code,
		Symbol:   sym.Name,
		Reporter: Reporter,
	}
}
