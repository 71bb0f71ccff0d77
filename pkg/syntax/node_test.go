package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/utcban/pkg/syntax"
)

// datetime.datetime.utcnow(x).
func sampleTree() *syntax.Node {
	dt := syntax.Name(syntax.At(1, 0), "datetime")
	inner := syntax.Attribute(syntax.At(1, 0), dt, "datetime")
	outer := syntax.Attribute(syntax.At(1, 0), inner, "utcnow")
	arg := syntax.Name(syntax.At(1, 25), "x")

	return syntax.Other("module", syntax.At(1, 0),
		syntax.Other("expression_statement", syntax.At(1, 0),
			syntax.Call(syntax.At(1, 0), outer, arg)))
}

func TestWalkPreOrder(t *testing.T) {
	t.Parallel()

	var visited []string

	syntax.Walk(sampleTree(), func(n *syntax.Node) bool {
		label := n.Type
		if n.Name != "" {
			label += ":" + n.Name
		}

		visited = append(visited, label)

		return true
	})

	assert.Equal(t, []string{
		"module",
		"expression_statement",
		"call",
		"attribute:utcnow",
		"attribute:datetime",
		"identifier:datetime",
		"identifier:x",
	}, visited)
}

func TestWalkStopsEarly(t *testing.T) {
	t.Parallel()

	seen := 0

	syntax.Walk(sampleTree(), func(n *syntax.Node) bool {
		seen++

		return n.Kind != syntax.KindCall
	})

	assert.Equal(t, 3, seen)
}

func TestWalkSkipsNil(t *testing.T) {
	t.Parallel()

	root := syntax.Other("module", syntax.At(1, 0), nil, syntax.Name(syntax.At(1, 0), "a"), nil)

	assert.Equal(t, 2, syntax.Count(root))
	assert.Equal(t, 0, syntax.Count(nil))
}

func TestWalkDeepTree(t *testing.T) {
	t.Parallel()

	root := syntax.Name(syntax.At(1, 0), "leaf")
	for range 200_000 {
		root = syntax.Other("parenthesized_expression", syntax.At(1, 0), root)
	}

	assert.Equal(t, 200_001, syntax.Count(root))
}

func TestAccessors(t *testing.T) {
	t.Parallel()

	name := syntax.Name(syntax.At(1, 0), "utcnow")
	call := syntax.Call(syntax.At(1, 0), name)
	attr := syntax.Attribute(syntax.At(1, 0), name, "utcnow")

	assert.Same(t, name, call.Callee())
	assert.Nil(t, call.Base())
	assert.Same(t, name, attr.Base())
	assert.Nil(t, attr.Callee())
	assert.True(t, name.IsName("utcnow"))
	assert.False(t, attr.IsName("utcnow"))
	assert.True(t, attr.IsAttribute("utcnow"))

	var missing *syntax.Node

	assert.Nil(t, missing.Callee())
	assert.Nil(t, missing.Base())
	assert.False(t, missing.IsName("utcnow"))

	empty := &syntax.Node{Kind: syntax.KindCall}
	assert.Nil(t, empty.Callee())
}

func TestKindNames(t *testing.T) {
	t.Parallel()

	for _, kind := range []syntax.Kind{syntax.KindCall, syntax.KindAttribute, syntax.KindName, syntax.KindOther} {
		assert.Equal(t, kind, syntax.ParseKind(kind.String()))
	}

	assert.Equal(t, syntax.KindOther, syntax.ParseKind("lambda"))
}
