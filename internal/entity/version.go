package entity

import "fmt"

// Version lifecycle statuses. Transitions are explicit: draft may be
// published, published may be archived. Nothing moves automatically.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// CanTransition reports whether a version may move from one lifecycle
// status to another.
func CanTransition(from, to string) bool {
	switch from {
	case StatusDraft:
		return to == StatusPublished
	case StatusPublished:
		return to == StatusArchived
	default:
		return false
	}
}

// Version belongs to exactly one product. Number is a positive integer,
// unique within the parent product. A version owns representation ids
// and/or a direct file list.
type Version struct {
	Base
	Number          int          `json:"version"`
	ProductID       string       `json:"product_id"`
	TaskID          *string      `json:"task_id,omitempty"`
	Author          string       `json:"author,omitempty"`
	Comment         string       `json:"comment,omitempty"`
	SourcePath      string       `json:"source_path,omitempty"`
	ScenePath       string       `json:"scene_path,omitempty"`
	DCCApp          string       `json:"dcc_app,omitempty"`
	Representations []string     `json:"representations,omitempty"`
	Files           []FileRecord `json:"files,omitempty"`
}

// NewVersion constructs a version with the given number. The name defaults
// to the zero-padded form (v001).
func NewVersion(number int, productID, author string) *Version {
	v := &Version{
		Base:      newBase(fmt.Sprintf("v%03d", number), author),
		Number:    number,
		ProductID: productID,
		Author:    author,
	}
	v.Status = StatusDraft
	return v
}

// Validate checks version invariants.
func (v *Version) Validate() []Violation {
	vs := v.validateBase()
	if v.Number < 1 {
		vs = append(vs, Violation{Field: "version", Msg: fmt.Sprintf("must be >= 1, got %d", v.Number)})
	}
	if v.ProductID == "" {
		vs = append(vs, Violation{Field: "product_id", Msg: "is required"})
	}
	switch v.Status {
	case StatusDraft, StatusPublished, StatusArchived:
	case "":
		vs = append(vs, Violation{Field: "status", Msg: "is required"})
	default:
		vs = append(vs, Violation{Field: "status", Msg: fmt.Sprintf("unknown lifecycle status %q", v.Status)})
	}
	return vs
}

// Representation belongs to exactly one version: a named format variant
// (scene format, cache format) owning its own file list.
type Representation struct {
	Base
	VersionID string       `json:"version_id"`
	Files     []FileRecord `json:"files,omitempty"`
}

// NewRepresentation constructs a representation attached to a version.
func NewRepresentation(name, versionID, createdBy string) *Representation {
	r := &Representation{
		Base:      newBase(name, createdBy),
		VersionID: versionID,
	}
	r.Status = StatusDraft
	return r
}

// Validate checks representation invariants.
func (r *Representation) Validate() []Violation {
	vs := r.validateBase()
	if r.VersionID == "" {
		vs = append(vs, Violation{Field: "version_id", Msg: "is required"})
	}
	return vs
}
