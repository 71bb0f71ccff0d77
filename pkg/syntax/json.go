package syntax

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Sentinel errors for tree decoding.
var (
	ErrInvalidTree = errors.New("syntax tree does not match schema")
	ErrEmptyTree   = errors.New("empty syntax tree document")
)

// TreeSchema is the JSON schema of the tree interchange format.
//
//go:embed tree-schema.json
var TreeSchema []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) { //nolint:gochecknoglobals // lazily compiled once
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(TreeSchema))
})

// jsonNode is the interchange representation of a Node.
type jsonNode struct {
	Kind     string      `json:"kind"`
	Type     string      `json:"type,omitempty"`
	Name     string      `json:"name,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
	Line     int         `json:"line"`
	Column   int         `json:"column"`
}

// DecodeJSON validates data against [TreeSchema] and decodes it into a tree.
// Nodes of unknown kinds decode as KindOther.
func DecodeJSON(data []byte) (*Node, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyTree
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile tree schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate tree: %w", err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTree, describeErrors(result.Errors()))
	}

	var raw jsonNode

	err = json.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}

	return raw.toNode(), nil
}

// ReadJSON reads a whole JSON document from r and decodes it with [DecodeJSON].
func ReadJSON(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}

	return DecodeJSON(data)
}

// EncodeJSON writes root in the interchange format.
func EncodeJSON(w io.Writer, root *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(fromNode(root))
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}

	return nil
}

func describeErrors(errs []gojsonschema.ResultError) string {
	parts := make([]string, 0, len(errs))
	for _, resultErr := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", resultErr.Field(), resultErr.Description()))
	}

	return strings.Join(parts, "; ")
}

func (jn *jsonNode) toNode() *Node {
	if jn == nil {
		return nil
	}

	out := &Node{
		Kind: ParseKind(jn.Kind),
		Type: jn.Type,
		Name: jn.Name,
		Pos:  Pos{Line: jn.Line, Column: jn.Column},
	}

	if len(jn.Children) > 0 {
		out.Children = make([]*Node, 0, len(jn.Children))
		for _, child := range jn.Children {
			out.Children = append(out.Children, child.toNode())
		}
	}

	return out
}

func fromNode(n *Node) *jsonNode {
	if n == nil {
		return nil
	}

	out := &jsonNode{
		Kind:   n.Kind.String(),
		Type:   n.Type,
		Name:   n.Name,
		Line:   n.Pos.Line,
		Column: n.Pos.Column,
	}

	for _, child := range n.Children {
		if child == nil {
			continue
		}

		out.Children = append(out.Children, fromNode(child))
	}

	return out
}
