package entity

// Folder is a hierarchy node. ParentID is nil for roots; Children is the
// authoritative inverse list and must stay consistent with every child's
// ParentID. A folder owns its tasks and products by id.
type Folder struct {
	Base
	FolderType string   `json:"folder_type"`
	ParentID   *string  `json:"parent_id,omitempty"`
	Path       string   `json:"path,omitempty"`
	Children   []string `json:"children,omitempty"`
	Products   []string `json:"products,omitempty"`
	Tasks      []string `json:"tasks,omitempty"`
}

// NewFolder constructs a folder. parentID may be nil for a root folder.
func NewFolder(name, folderType string, parentID *string, createdBy string) *Folder {
	f := &Folder{
		Base:       newBase(name, createdBy),
		FolderType: folderType,
		ParentID:   parentID,
	}
	f.Status = "Not Started"
	return f
}

// Validate checks folder invariants. Cycle freedom is a property of the
// whole folder set and is enforced by the hierarchy builder and manager,
// not per record.
func (f *Folder) Validate() []Violation {
	vs := f.validateBase()
	if f.FolderType == "" {
		vs = append(vs, Violation{Field: "folder_type", Msg: "is required"})
	}
	if f.ParentID != nil && *f.ParentID == "" {
		vs = append(vs, Violation{Field: "parent_id", Msg: "must be null or a folder id"})
	}
	if f.ParentID != nil && *f.ParentID == f.ID {
		vs = append(vs, Violation{Field: "parent_id", Msg: "folder cannot be its own parent"})
	}
	return vs
}

// AddChild appends a child folder id, keeping the list duplicate free.
func (f *Folder) AddChild(id string) {
	for _, c := range f.Children {
		if c == id {
			return
		}
	}
	f.Children = append(f.Children, id)
}

// HasAncestor reports whether candidate appears on the parent chain of
// folder id within the given set. Used to reject reparenting that would
// introduce a cycle.
func HasAncestor(folders map[string]*Folder, id, candidate string) bool {
	seen := make(map[string]bool)
	cur := folders[id]
	for cur != nil && cur.ParentID != nil {
		pid := *cur.ParentID
		if pid == candidate {
			return true
		}
		if seen[pid] {
			return false // already cyclic; do not loop forever
		}
		seen[pid] = true
		cur = folders[pid]
	}
	return false
}
