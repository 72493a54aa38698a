package tree

import "github.com/goliatone/go-formpath/pkg/fieldpath"

// Lookup returns every node addressed by p under root, in tree order.
// Wildcard segments match every key of a map and every set position of a
// list; append markers address nothing.
func Lookup(root Node, p fieldpath.Path) []Node {
	if root == nil || len(p) == 0 {
		return nil
	}

	current := []Node{root}
	for _, seg := range p {
		var next []Node
		for _, n := range current {
			next = append(next, step(n, seg)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// Get returns the single node addressed by a wildcard-free path.
func Get(root Node, p fieldpath.Path) (Node, bool) {
	found := Lookup(root, p)
	if len(found) != 1 {
		return nil, false
	}
	return found[0], true
}

func step(n Node, seg fieldpath.Segment) []Node {
	switch node := n.(type) {
	case *Map:
		switch seg.Kind {
		case fieldpath.KindKey:
			if child, ok := node.Get(seg.Key); ok && child != nil {
				return []Node{child}
			}
		case fieldpath.KindWildcard:
			out := make([]Node, 0, node.Len())
			for _, key := range node.keys {
				if child := node.values[key]; child != nil {
					out = append(out, child)
				}
			}
			return out
		}
	case *List:
		switch seg.Kind {
		case fieldpath.KindIndex:
			if child := node.At(seg.Index); child != nil {
				return []Node{child}
			}
		case fieldpath.KindWildcard:
			out := make([]Node, 0, node.Len())
			for _, child := range node.items {
				if child != nil {
					out = append(out, child)
				}
			}
			return out
		}
	}
	return nil
}
