package corpus

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Tree is a parsed S-expression as printed by tree-sitter.
type Tree struct {
	Roots []*Node `parser:"@@*"`
}

// Node is a parenthesized S-expression node: its type followed by
// children, each optionally prefixed by a field name.
type Node struct {
	Pos lexer.Position

	Type     string   `parser:"'(' @Ident"`
	Children []*Child `parser:"@@* ')'"`
}

// Child is a node or a literal (e.g. the quoted token in a MISSING node),
// with an optional "field:" prefix.
type Child struct {
	Field   fieldName `parser:"@Field?"`
	Node    *Node     `parser:"( @@"`
	Literal *string   `parser:"| @(String | Ident) )"`
}

// fieldName strips the trailing colon from a Field token.
type fieldName string

func (f *fieldName) Capture(values []string) error {
	*f = fieldName(strings.TrimSuffix(values[0], ":"))

	return nil
}

var sexpLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Field", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*:`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
	{Name: "Punct", Pattern: `[()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var sexpParser = participle.MustBuild[Tree](
	participle.Lexer(sexpLexer),
	participle.Elide("Whitespace"),
)

// ParseSexp parses the expected tree of a corpus case.
func ParseSexp(src string) (*Tree, error) {
	return sexpParser.ParseString("", src)
}

// Field returns the first child node stored under name.
func (n *Node) Field(name string) *Node {
	for _, c := range n.Children {
		if string(c.Field) == name && c.Node != nil {
			return c.Node
		}
	}

	return nil
}

// Nodes returns the child nodes, skipping literals.
func (n *Node) Nodes() []*Node {
	var nodes []*Node

	for _, c := range n.Children {
		if c.Node != nil {
			nodes = append(nodes, c.Node)
		}
	}

	return nodes
}

// Contains reports whether any node in the subtree has the given type.
func (n *Node) Contains(typ string) bool {
	if n.Type == typ {
		return true
	}

	for _, c := range n.Nodes() {
		if c.Contains(typ) {
			return true
		}
	}

	return false
}

// String renders the node back to S-expression form.
func (n *Node) String() string {
	var b strings.Builder

	n.write(&b)

	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	b.WriteString("(" + n.Type)

	for _, c := range n.Children {
		b.WriteString(" ")

		if c.Field != "" {
			b.WriteString(string(c.Field) + ": ")
		}

		if c.Node != nil {
			c.Node.write(b)
		} else if c.Literal != nil {
			b.WriteString(*c.Literal)
		}
	}

	b.WriteString(")")
}
