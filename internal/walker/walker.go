// Package walker traverses estree trees. SimpleWalk is a read-only query
// helper. Walker supports skipping, replacing and removing nodes while the
// traversal is in progress.
package walker

import "github.com/esm2cjs/esm2cjs/internal/estree"

func isSyntaxNode(node *estree.Node) bool {
	return node != nil && node.Type != ""
}

// SimpleWalk visits root and then every descendant in field order. The
// callback returns false to keep the walk out of that node's children. The
// tree must not be mutated during the walk.
func SimpleWalk(root *estree.Node, visit func(node *estree.Node, parent *estree.Node) bool) {
	simpleVisit(root, nil, visit)
}

func simpleVisit(node *estree.Node, parent *estree.Node, visit func(node *estree.Node, parent *estree.Node) bool) {
	if !isSyntaxNode(node) || !visit(node, parent) {
		return
	}
	for _, f := range node.Fields {
		switch v := f.Value.(type) {
		case *estree.Node:
			simpleVisit(v, node, visit)
		case []*estree.Node:
			for _, item := range v {
				simpleVisit(item, node, visit)
			}
		}
	}
}

// Hook receives the node together with the slot it lives in: the parent,
// the parent's field key, and the position in that field (-1 for a field
// holding a single node). The root has a nil parent.
type Hook func(w *Walker, node *estree.Node, parent *estree.Node, key string, index int)

type Walker struct {
	Enter Hook
	Leave Hook

	state control
}

// Pending requests made by the hook currently running. These are saved and
// restored around every node so a Walk started from inside a hook cannot
// leak its state into the traversal that is still in progress.
type control struct {
	skip        bool
	remove      bool
	replacement *estree.Node
}

// Skip keeps the traversal out of the children of the current node. Only
// meaningful in Enter.
func (w *Walker) Skip() {
	w.state.skip = true
}

// Replace puts node into the current node's slot. Replacing in Enter means
// the traversal continues into the replacement's children.
func (w *Walker) Replace(node *estree.Node) {
	w.state.replacement = node
}

// Remove clears a single-node field or splices the node out of an array
// field. The following sibling is still visited exactly once.
func (w *Walker) Remove() {
	w.state.remove = true
}

// Walk returns the root, its replacement, or nil if the root was removed.
func (w *Walker) Walk(root *estree.Node) *estree.Node {
	if !isSyntaxNode(root) {
		return root
	}
	node, removed := w.visit(root, nil, "", -1)
	if removed {
		return nil
	}
	return node
}

func (w *Walker) visit(node *estree.Node, parent *estree.Node, key string, index int) (*estree.Node, bool) {
	saved := w.state
	defer func() { w.state = saved }()

	removed := false
	descend := true

	if w.Enter != nil {
		w.state = control{}
		w.Enter(w, node, parent, key, index)
		node, removed = w.apply(node, parent, key, index)
		descend = !w.state.skip && !removed
	}

	if descend {
		w.visitChildren(node)
	}

	if w.Leave != nil {
		w.state = control{}
		w.Leave(w, node, parent, key, index)

		// A node removed in Enter no longer has a slot to change
		if !removed {
			node, removed = w.apply(node, parent, key, index)
		}
	}

	return node, removed
}

func (w *Walker) apply(node *estree.Node, parent *estree.Node, key string, index int) (*estree.Node, bool) {
	if w.state.replacement != nil {
		node = w.state.replacement
		setSlot(parent, key, index, node)
	}
	if w.state.remove {
		removeSlot(parent, key, index)
		return node, true
	}
	return node, false
}

func (w *Walker) visitChildren(node *estree.Node) {
	for i := 0; i < len(node.Fields); i++ {
		key := node.Fields[i].Key
		switch v := node.Fields[i].Value.(type) {
		case *estree.Node:
			if isSyntaxNode(v) {
				w.visit(v, node, key, -1)
			}

		case []*estree.Node:
			// The list is re-read every step since hooks may splice it
			for j := 0; j < len(node.Children(key)); j++ {
				child := node.Children(key)[j]
				if !isSyntaxNode(child) {
					continue
				}
				if _, removed := w.visit(child, node, key, j); removed {
					j--
				}
			}
		}
	}
}

func setSlot(parent *estree.Node, key string, index int, node *estree.Node) {
	if parent == nil {
		return
	}
	if index >= 0 {
		parent.Children(key)[index] = node
	} else {
		parent.Set(key, node)
	}
}

func removeSlot(parent *estree.Node, key string, index int) {
	if parent == nil {
		return
	}
	if index >= 0 {
		list := parent.Children(key)
		parent.Set(key, append(list[:index:index], list[index+1:]...))
	} else {
		parent.Set(key, nil)
	}
}
