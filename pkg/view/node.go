package view

// Kind discriminates node types.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <a>, ...
	KindText                 // escaped text
	KindFragment             // children without a wrapper
	KindRaw                  // unescaped HTML
	KindOutlet               // slot filled by the child route
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindRaw:
		return "Raw"
	case KindOutlet:
		return "Outlet"
	default:
		return "Unknown"
	}
}

// Node is one node of a rendered route tree.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// Attr is a single HTML attribute. Attributes keep declaration order.
type Attr struct {
	Key   string
	Value string
}

// Text creates an escaped text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Raw creates a node whose content is written without escaping.
func Raw(html string) *Node {
	return &Node{Kind: KindRaw, Text: html}
}

// Fragment groups nodes without a wrapping element.
func Fragment(children ...*Node) *Node {
	return &Node{Kind: KindFragment, Children: compact(children)}
}

// Outlet marks where a child route's output is placed.
func Outlet() *Node {
	return &Node{Kind: KindOutlet}
}

// El creates an element. Arguments may be Attr, []Attr, *Node, []*Node,
// string (text) or nil, which is skipped.
func El(tag string, args ...any) *Node {
	n := &Node{Kind: KindElement, Tag: tag}
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
		case Attr:
			if v.Key != "" {
				n.Attrs = append(n.Attrs, v)
			}
		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					n.Attrs = append(n.Attrs, a)
				}
			}
		case *Node:
			if v != nil {
				n.Children = append(n.Children, v)
			}
		case []*Node:
			n.Children = append(n.Children, compact(v)...)
		case string:
			n.Children = append(n.Children, Text(v))
		}
	}
	return n
}

// HasOutlet reports whether the tree contains an outlet placeholder.
func (n *Node) HasOutlet() bool {
	if n == nil {
		return false
	}
	if n.Kind == KindOutlet {
		return true
	}
	for _, c := range n.Children {
		if c.HasOutlet() {
			return true
		}
	}
	return false
}

// FillOutlet returns a copy of parent with every outlet replaced by child.
// A nil child empties the outlet. The parent tree is not modified, so a
// render function may return a shared, pre-built tree. The boolean reports
// whether an outlet was found.
func FillOutlet(parent, child *Node) (*Node, bool) {
	if parent == nil {
		return nil, false
	}
	if parent.Kind == KindOutlet {
		if child == nil {
			return Fragment(), true
		}
		return child, true
	}
	if len(parent.Children) == 0 {
		return parent, false
	}

	filled := false
	children := make([]*Node, len(parent.Children))
	for i, c := range parent.Children {
		var ok bool
		children[i], ok = FillOutlet(c, child)
		filled = filled || ok
	}
	if !filled {
		return parent, false
	}

	cp := *parent
	cp.Children = children
	return &cp, true
}

func compact(nodes []*Node) []*Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
