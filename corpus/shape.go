package corpus

import (
	"fmt"
	"strings"

	gram "github.com/gram-data/gram-go"
)

// Shape is the structure a corpus tree and a parsed pattern are compared
// on. It records whether a subject is identified and how many labels and
// properties it has, but not their spelling: the expected trees name node
// types, not token text.
type Shape struct {
	Identified bool
	Labels     int
	Properties int
	Elements   []Shape
}

// ShapeOf returns the shape of a parsed pattern.
func ShapeOf(p gram.Pattern[gram.Subject]) Shape {
	s := Shape{
		Identified: p.Value.Identity != "",
		Labels:     len(p.Value.Labels),
		Properties: len(p.Value.Properties),
	}

	for _, e := range p.Elements {
		s.Elements = append(s.Elements, ShapeOf(e))
	}

	return s
}

// ShapesOf returns the shapes of a parsed document.
func ShapesOf(patterns []gram.Pattern[gram.Subject]) []Shape {
	shapes := make([]Shape, 0, len(patterns))
	for _, p := range patterns {
		shapes = append(shapes, ShapeOf(p))
	}

	return shapes
}

// ExpectedShapes converts a tree-sitter-gram tree into the shapes the parser
// should produce for it, one per top-level pattern.
func ExpectedShapes(tree *Tree) ([]Shape, error) {
	shapes := []Shape{}

	for _, root := range tree.Roots {
		if root.Type != "gram_pattern" {
			return nil, fmt.Errorf("%w: root node %q", ErrBadTree, root.Type)
		}

		for _, child := range root.Children {
			if child.Node == nil || child.Node.Type == "comment" {
				continue
			}

			s, err := shapeOfNode(child.Node)
			if err != nil {
				return nil, err
			}

			shapes = append(shapes, s)
		}
	}

	return shapes, nil
}

func shapeOfNode(n *Node) (Shape, error) {
	switch n.Type {
	case "node_pattern":
		return subjectShape(n), nil
	case "record":
		return Shape{Properties: countRecord(n)}, nil
	case "reference", "symbol":
		return Shape{Identified: true}, nil
	case "relationship_pattern":
		return relationshipShape(n)
	case "subject_pattern":
		return subjectPatternShape(n)
	case "annotated_pattern":
		return annotatedShape(n)
	default:
		return Shape{}, fmt.Errorf("%w: node %q", ErrBadTree, n.Type)
	}
}

// subjectShape reads the identifier, labels and record fields of n.
func subjectShape(n *Node) Shape {
	s := Shape{Identified: n.Field("identifier") != nil}

	if labels := n.Field("labels"); labels != nil {
		s.Labels = len(labels.Nodes())
	}

	if record := n.Field("record"); record != nil {
		s.Properties = countRecord(record)
	}

	return s
}

func countRecord(n *Node) int {
	count := 0

	for _, c := range n.Nodes() {
		if c.Type == "record_property" {
			count++
		}
	}

	return count
}

// relationshipShape flattens a right-nested chain of relationship_pattern
// nodes and folds it from the left, the way paths are parsed. Arrows whose
// type starts with "left_" swap their endpoints.
func relationshipShape(n *Node) (Shape, error) {
	var (
		nodes  []Shape
		arrows []*Node
	)

	for cur := n; ; {
		left := cur.Field("left")
		kind := cur.Field("kind")
		right := cur.Field("right")

		if left == nil || kind == nil || right == nil {
			return Shape{}, fmt.Errorf("%w: relationship_pattern needs left, kind and right", ErrBadTree)
		}

		ls, err := shapeOfNode(left)
		if err != nil {
			return Shape{}, err
		}

		nodes = append(nodes, ls)
		arrows = append(arrows, kind)

		if right.Type != "relationship_pattern" {
			rs, err := shapeOfNode(right)
			if err != nil {
				return Shape{}, err
			}

			nodes = append(nodes, rs)

			break
		}

		cur = right
	}

	acc := nodes[0]

	for i, a := range arrows {
		left, right := acc, nodes[i+1]
		if strings.HasPrefix(a.Type, "left_") {
			left, right = right, left
		}

		edge := subjectShape(a)
		edge.Elements = []Shape{left, right}
		acc = edge
	}

	return acc, nil
}

func subjectPatternShape(n *Node) (Shape, error) {
	s := subjectShape(n)

	elements := n.Field("elements")
	if elements == nil {
		return s, nil
	}

	for _, e := range elements.Nodes() {
		if e.Type == "comment" {
			continue
		}

		es, err := shapeOfNode(e)
		if err != nil {
			return Shape{}, err
		}

		s.Elements = append(s.Elements, es)
	}

	return s, nil
}

func annotatedShape(n *Node) (Shape, error) {
	var (
		s     Shape
		inner *Node
	)

	for _, c := range n.Children {
		switch {
		case c.Node == nil:
		case string(c.Field) == "annotations":
			s.Properties += len(c.Node.Nodes())
		case c.Node.Type == "annotation":
			s.Properties++
		case inner == nil:
			inner = c.Node
		}
	}

	if inner == nil {
		return Shape{}, fmt.Errorf("%w: annotated_pattern without a pattern", ErrBadTree)
	}

	is, err := shapeOfNode(inner)
	if err != nil {
		return Shape{}, err
	}

	s.Elements = []Shape{is}

	return s, nil
}
