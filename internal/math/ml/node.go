package ml

import (
	"github.com/drakos74/free-learn/internal/api"
)

// Node is a decision tree node.
// Interior nodes are labeled with an attribute name and carry one edge per attribute value,
// leaves are labeled with a class value.
type Node struct {
	Label    string
	parent   *Node
	children []*Node
	links    []string
}

// NewNode creates a new node with the given label.
func NewNode(label string) *Node {
	return &Node{
		Label:    label,
		children: make([]*Node, 0),
		links:    make([]string, 0),
	}
}

// AddChild links the child to the node through an edge with the given label.
func (n *Node) AddChild(child *Node, link string) {
	child.parent = n
	n.children = append(n.children, child)
	n.links = append(n.links, link)
}

// Parent returns the parent of the node, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child nodes in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

// Links returns the edge labels in the order of the children.
func (n *Node) Links() []string {
	return n.links
}

// IsLeaf checks if the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// Depth returns the number of edges on the longest path down to a leaf.
func (n *Node) Depth() int {
	depth := 0
	for _, child := range n.children {
		if d := child.Depth() + 1; d > depth {
			depth = d
		}
	}
	return depth
}

// Classify walks the tree following the values returned by lookup for each attribute,
// until it reaches a leaf.
// It returns false if an attribute is missing or its value has no edge.
func (n *Node) Classify(lookup func(attribute string) (string, bool)) (string, bool) {
	node := n
	for !node.IsLeaf() {
		value, ok := lookup(node.Label)
		if !ok {
			return "", false
		}
		next := node.child(node.Label + "=" + value)
		if next == nil {
			return "", false
		}
		node = next
	}
	return node.Label, true
}

func (n *Node) child(link string) *Node {
	for i, l := range n.links {
		if l == link {
			return n.children[i]
		}
	}
	return nil
}

// Render emits the IF/THEN layout of the tree on the sink.
func (n *Node) Render(sink api.Sink, offset string) {
	sink = api.OrVoid(sink)
	if n.IsLeaf() {
		sink.Emit(offset + "    THEN (" + n.Label + ")  (Leaf node)")
		return
	}
	sink.Emit(offset + "   " + n.Label + " (Interior node)")
	for i, child := range n.children {
		sink.Emit(offset + "   IF (" + n.links[i] + ")")
		child.Render(sink, offset+"   ")
	}
}

func (n *Node) String() string {
	buffer := api.NewBuffer()
	n.Render(buffer, "")
	return buffer.String()
}
