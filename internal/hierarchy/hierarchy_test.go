package hierarchy

import (
	"testing"

	"github.com/voguefx/vogue/internal/entity"
)

func folder(name string, parent *string) *entity.Folder {
	return entity.NewFolder(name, "Folder", parent, "tester")
}

func TestBuildTree(t *testing.T) {
	root := folder("Assets", nil)
	childA := folder("Characters", &root.ID)
	childB := folder("Props", &root.ID)
	grand := folder("Hero", &childA.ID)
	root.AddChild(childA.ID)
	root.AddChild(childB.ID)
	childA.AddChild(grand.ID)

	roots := Build([]*entity.Folder{root, childA, childB, grand})
	if len(roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(roots))
	}
	if got := roots[0].Folder.Name; got != "Assets" {
		t.Fatalf("root = %s", got)
	}
	if len(roots[0].Children) != 2 {
		t.Fatalf("children = %d, want 2", len(roots[0].Children))
	}
	// Children keep list order.
	if roots[0].Children[0].Folder.Name != "Characters" {
		t.Errorf("first child = %s, want Characters", roots[0].Children[0].Folder.Name)
	}
	if len(roots[0].Children[0].Children) != 1 {
		t.Errorf("grandchildren = %d, want 1", len(roots[0].Children[0].Children))
	}
	if Count(roots) != 4 {
		t.Errorf("Count = %d, want 4", Count(roots))
	}
}

func TestBuildSkipsBrokenParentRefs(t *testing.T) {
	missing := "no-such-folder"
	orphan := folder("Orphan", &missing)
	root := folder("Root", nil)

	roots := Build([]*entity.Folder{root, orphan})
	if len(roots) != 1 {
		t.Fatalf("roots = %d, want 1 (orphan skipped)", len(roots))
	}
	if Find(roots, orphan.ID) != nil {
		t.Error("orphan must not appear in the tree")
	}
}

func TestBuildSurvivesCycle(t *testing.T) {
	a := folder("A", nil)
	b := folder("B", &a.ID)
	a.AddChild(b.ID)
	b.AddChild(a.ID)
	// Corrupt state: a claims b as parent too.
	a.ParentID = &b.ID

	// Neither is a root now; Build must terminate and return an empty
	// forest rather than hang.
	roots := Build([]*entity.Folder{a, b})
	if len(roots) != 0 {
		t.Errorf("roots = %d, want 0 for a pure cycle", len(roots))
	}
}

func TestWalkDepths(t *testing.T) {
	root := folder("Root", nil)
	child := folder("Child", &root.ID)
	root.AddChild(child.ID)
	roots := Build([]*entity.Folder{root, child})

	depths := map[string]int{}
	Walk(roots, func(n *Node, depth int) {
		depths[n.Folder.Name] = depth
	})
	if depths["Root"] != 0 || depths["Child"] != 1 {
		t.Errorf("depths = %v", depths)
	}
}
