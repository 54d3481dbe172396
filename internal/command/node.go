// Package command implements the text-command node graph (spec.md §4.K):
// the Literal/Parser node tree sent to clients at play-login so they can
// render tab-completion and client-side syntax highlighting, plus the
// coordinate grammar (absolute/relative/local) used when parsing
// argument values out of a submitted command string.
package command

// NodeKind distinguishes the three node shapes the wire format knows
// about. The root node is always index 0 of a flattened graph.
type NodeKind byte

const (
	KindRoot NodeKind = iota
	KindLiteral
	KindArgument
)

// ParserKind names one of the argument value types spec.md §4.K lists.
type ParserKind int

const (
	ParserBool ParserKind = iota
	ParserInt
	ParserLong
	ParserFloat
	ParserDouble
	ParserBlockPosition
	ParserVec3
	ParserResourceKey
)

// Parser describes an argument node's value type and, for the numeric
// kinds, its optional bounds; ResourceKey additionally names the
// registry its values are drawn from.
type Parser struct {
	Kind ParserKind

	HasMin, HasMax       bool
	MinInt, MaxInt       int32
	MinLong, MaxLong     int64
	MinFloat, MaxFloat   float32
	MinDouble, MaxDouble float64

	Registry string // ParserResourceKey only
}

// Node is one entry in the command tree: either the implicit root, a
// fixed literal keyword, or a typed argument.
type Node struct {
	Kind       NodeKind
	Name       string // literal text, or argument name
	Executable bool
	Parser     *Parser // KindArgument only
	Children   []*Node
}

// NewRoot returns an empty root node ready to have literals attached.
func NewRoot() *Node {
	return &Node{Kind: KindRoot}
}

// Literal appends (or returns the existing) literal child named name.
func (n *Node) Literal(name string) *Node {
	for _, c := range n.Children {
		if c.Kind == KindLiteral && c.Name == name {
			return c
		}
	}
	child := &Node{Kind: KindLiteral, Name: name}
	n.Children = append(n.Children, child)
	return child
}

// Argument appends a typed argument child.
func (n *Node) Argument(name string, parser Parser) *Node {
	child := &Node{Kind: KindArgument, Name: name, Parser: &parser}
	n.Children = append(n.Children, child)
	return child
}

// Exec marks n as a valid command terminator and returns n for chaining.
func (n *Node) Exec() *Node {
	n.Executable = true
	return n
}

// FlatNode is one entry in a flattened graph: children are indices into
// the flattened slice, matching the wire format's shape.
type FlatNode struct {
	Kind       NodeKind
	Name       string
	Executable bool
	Parser     *Parser
	Children   []int32
}

// Flatten walks the tree depth-first in pre-order (root first, then each
// child's whole subtree in declaration order) and returns the flattened graph
// plus the root's index (always 0, kept explicit to match the wire
// format's "computed root index" language in spec.md §4.K).
func Flatten(root *Node) ([]FlatNode, int32) {
	index := map[*Node]int32{}
	var order []*Node

	var visit func(n *Node)
	visit = func(n *Node) {
		if _, ok := index[n]; ok {
			return
		}
		index[n] = int32(len(order))
		order = append(order, n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(root)

	flat := make([]FlatNode, len(order))
	for i, n := range order {
		children := make([]int32, len(n.Children))
		for j, c := range n.Children {
			children[j] = index[c]
		}
		flat[i] = FlatNode{Kind: n.Kind, Name: n.Name, Executable: n.Executable, Parser: n.Parser, Children: children}
	}
	return flat, index[root]
}
