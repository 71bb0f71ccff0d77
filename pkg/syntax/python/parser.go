// Package python lowers tree-sitter Python parse trees into syntax trees.
package python

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"fortio.org/safecast"
	pygrammar "github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/utcban/pkg/syntax"
)

// Sentinel errors for parser operations.
var (
	errNoRootNode = errors.New("python parser: no root node")
	errPoolType   = errors.New("python parser: pool returned unexpected type")
)

// Tree-sitter node types and field names the lowering relies on.
const (
	typeCall       = "call"
	typeAttribute  = "attribute"
	typeIdentifier = "identifier"
	typeParens     = "parenthesized_expression"
	typeDottedName = "dotted_name"
	typeComment    = "comment"

	// Node types of match-statement patterns share this suffix.
	patternSuffix = "_pattern"

	fieldFunction  = "function"
	fieldArguments = "arguments"
	fieldObject    = "object"
	fieldAttribute = "attribute"
)

// Initial stack capacity for lowering, sized for typical module trees.
const lowerStackInitCap = 128

var language = sync.OnceValue(func() *sitter.Language { //nolint:gochecknoglobals // grammar is loaded once
	return sitter.NewLanguage(pygrammar.GetLanguage())
})

// Parser parses Python source. It is safe for concurrent use.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Parser backed by the tree-sitter Python grammar.
func NewParser() *Parser {
	lang := language()

	return &Parser{
		pool: sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(lang)

				return tsParser
			},
		},
	}
}

// Parse parses content and returns the lowered syntax tree.
// Syntax errors do not fail the parse: erroneous regions become plain nodes.
func (p *Parser) Parse(ctx context.Context, content []byte) (*syntax.Node, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("python parser: failed to parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	return lower(root, content), nil
}

// pending pairs a tree-sitter node with the syntax node it is lowered into.
// inPattern marks the direct children of a match-statement pattern.
type pending struct {
	out       *syntax.Node
	ts        sitter.Node
	inPattern bool
}

// lower converts the tree-sitter tree into a syntax tree without recursion.
func lower(root sitter.Node, content []byte) *syntax.Node {
	out := &syntax.Node{}

	stack := make([]pending, 0, lowerStackInitCap)
	stack = append(stack, pending{ts: root, out: out})

	for len(stack) > 0 {
		last := len(stack) - 1
		item := stack[last]
		stack = stack[:last]

		children := fill(item.out, item.ts, content, item.inPattern)
		inPattern := strings.HasSuffix(item.ts.Type(), patternSuffix)

		for _, child := range children {
			dst := &syntax.Node{}
			item.out.Children = append(item.out.Children, dst)
			stack = append(stack, pending{ts: child, out: dst, inPattern: inPattern})
		}
	}

	return out
}

// fill sets the fields of out from ts and returns the tree-sitter children to lower next.
//
// Parentheses produce no node of their own: a parenthesized expression is
// lowered as the expression it wraps. A dotted name used as a match pattern
// value or class becomes the equivalent name and attribute chain.
func fill(out *syntax.Node, ts sitter.Node, content []byte, inPattern bool) []sitter.Node {
	ts = unwrapParens(ts)

	out.Type = ts.Type()
	out.Pos = position(ts)

	switch ts.Type() {
	case typeIdentifier:
		out.Kind = syntax.KindName
		out.Name = text(ts, content)

		return nil

	case typeCall:
		callee := ts.ChildByFieldName(fieldFunction)
		if callee.IsNull() {
			break
		}

		out.Kind = syntax.KindCall

		children := []sitter.Node{callee}
		if args := ts.ChildByFieldName(fieldArguments); !args.IsNull() {
			children = append(children, args)
		}

		return children

	case typeAttribute:
		base := ts.ChildByFieldName(fieldObject)
		attr := ts.ChildByFieldName(fieldAttribute)

		if base.IsNull() || attr.IsNull() {
			break
		}

		out.Kind = syntax.KindAttribute
		out.Name = text(attr, content)

		return []sitter.Node{base}

	case typeDottedName:
		if inPattern && fillDotted(out, ts, content) {
			return nil
		}
	}

	out.Kind = syntax.KindOther

	return namedChildren(ts)
}

// unwrapParens strips parentheses around a single expression, however deeply nested.
// Tuples, generators and empty parentheses have their own node types and are kept.
func unwrapParens(ts sitter.Node) sitter.Node {
	for ts.Type() == typeParens {
		var inner sitter.Node

		found := 0

		for idx := range ts.NamedChildCount() {
			child := ts.NamedChild(idx)
			if child.Type() == typeComment {
				continue
			}

			inner = child
			found++
		}

		if found != 1 {
			break
		}

		ts = inner
	}

	return ts
}

// fillDotted lowers a dotted name such as a.b.c into Attribute(Attribute(Name a, b), c).
// Every attribute in the chain starts where the dotted name starts.
func fillDotted(out *syntax.Node, ts sitter.Node, content []byte) bool {
	parts := namedChildren(ts)
	if len(parts) == 0 || slices.ContainsFunc(parts, func(part sitter.Node) bool {
		return part.Type() != typeIdentifier
	}) {
		return false
	}

	last := len(parts) - 1
	if last == 0 {
		*out = *syntax.Name(position(parts[0]), text(parts[0], content))

		return true
	}

	pos := position(ts)
	chain := syntax.Name(position(parts[0]), text(parts[0], content))

	for _, part := range parts[1:last] {
		chain = syntax.Attribute(pos, chain, text(part, content))
	}

	*out = *syntax.Attribute(pos, chain, text(parts[last], content))

	return true
}

func namedChildren(ts sitter.Node) []sitter.Node {
	count := ts.NamedChildCount()
	if count == 0 {
		return nil
	}

	children := make([]sitter.Node, 0, count)
	for idx := range count {
		children = append(children, ts.NamedChild(idx))
	}

	return children
}

func position(ts sitter.Node) syntax.Pos {
	start := ts.StartPoint()

	return syntax.Pos{
		Line:   mustInt(start.Row) + 1,
		Column: mustInt(start.Column),
	}
}

func text(ts sitter.Node, content []byte) string {
	start := ts.StartByte()
	end := ts.EndByte()

	if start > end || end > uint(len(content)) {
		return ""
	}

	return string(content[start:end])
}

func mustInt(v uint) int {
	n, err := safecast.Conv[int](v)
	if err != nil {
		panic(fmt.Errorf("python parser: position overflow: %w", err))
	}

	return n
}
