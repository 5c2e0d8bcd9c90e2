// Package hierarchy builds the parent/child tree over folder records used
// for navigation and cascading containment.
package hierarchy

import "github.com/voguefx/vogue/internal/entity"

// Node is one folder in the built tree.
type Node struct {
	Folder   *entity.Folder
	Children []*Node
}

// Build partitions folders into roots (nil parent) and non-roots, then
// attaches each folder's listed children recursively.
//
// Children keep the order they were appended in; call sites needing a
// display order sort explicitly. Ids referenced in a children list but
// absent from the input set are skipped, not fatal: the scanner may run
// before every referenced record exists.
func Build(folders []*entity.Folder) []*Node {
	byID := make(map[string]*entity.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}

	var attach func(f *entity.Folder, onPath map[string]bool) *Node
	attach = func(f *entity.Folder, onPath map[string]bool) *Node {
		n := &Node{Folder: f}
		onPath[f.ID] = true
		for _, childID := range f.Children {
			child, ok := byID[childID]
			if !ok {
				continue // broken reference, tolerated
			}
			if onPath[childID] {
				continue // already on the current path, cycle
			}
			n.Children = append(n.Children, attach(child, onPath))
		}
		delete(onPath, f.ID)
		return n
	}

	var roots []*Node
	onPath := make(map[string]bool)
	for _, f := range folders {
		if f.ParentID == nil {
			roots = append(roots, attach(f, onPath))
		}
	}
	return roots
}

// Walk visits every node depth first in tree order.
func Walk(roots []*Node, visit func(n *Node, depth int)) {
	var rec func(n *Node, depth int)
	rec = func(n *Node, depth int) {
		visit(n, depth)
		for _, c := range n.Children {
			rec(c, depth+1)
		}
	}
	for _, r := range roots {
		rec(r, 0)
	}
}

// Find returns the first node whose folder id matches, or nil.
func Find(roots []*Node, id string) *Node {
	var found *Node
	Walk(roots, func(n *Node, _ int) {
		if found == nil && n.Folder.ID == id {
			found = n
		}
	})
	return found
}

// Count returns the total number of nodes in the tree.
func Count(roots []*Node) int {
	total := 0
	Walk(roots, func(*Node, int) { total++ })
	return total
}
