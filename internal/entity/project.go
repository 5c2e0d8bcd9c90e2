package entity

import "fmt"

// AnatomyItem is one named entry in the project anatomy (a folder type,
// task type, status, tag or link type). Position controls display order.
type AnatomyItem struct {
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
	Position int    `json:"position"`
}

// Anatomy is the per-project vocabulary: which folder types, task types,
// statuses, tags and link types exist.
type Anatomy struct {
	FolderTypes []AnatomyItem `json:"folder_types"`
	TaskTypes   []AnatomyItem `json:"task_types"`
	Statuses    []AnatomyItem `json:"statuses"`
	Tags        []AnatomyItem `json:"tags"`
	LinkTypes   []AnatomyItem `json:"link_types"`
}

// HasFolderType reports whether name is a known folder type.
func (a *Anatomy) HasFolderType(name string) bool {
	for _, t := range a.FolderTypes {
		if t.Name == name {
			return true
		}
	}
	return false
}

// HasTaskType reports whether name is a known task type.
func (a *Anatomy) HasTaskType(name string) bool {
	for _, t := range a.TaskTypes {
		if t.Name == name {
			return true
		}
	}
	return false
}

// HasStatus reports whether name is a known status.
func (a *Anatomy) HasStatus(name string) bool {
	for _, s := range a.Statuses {
		if s.Name == name {
			return true
		}
	}
	return false
}

// DefaultAnatomy returns the vocabulary a new project starts with.
func DefaultAnatomy() Anatomy {
	return Anatomy{
		FolderTypes: []AnatomyItem{
			{Name: "Folder", Icon: "folder", Color: "#A0A6AC", Position: 0},
			{Name: "Asset", Icon: "folder", Color: "#4A9EFF", Position: 1},
			{Name: "Shot", Icon: "video", Color: "#51CF66", Position: 2},
			{Name: "Sequence", Icon: "film", Color: "#FFD43B", Position: 3},
			{Name: "Episode", Icon: "tv", Color: "#FF6B6B", Position: 4},
		},
		TaskTypes: []AnatomyItem{
			{Name: "Modeling", Icon: "cube", Color: "#4A9EFF", Position: 0},
			{Name: "Texturing", Icon: "paint-brush", Color: "#51CF66", Position: 1},
			{Name: "Rigging", Icon: "cog", Color: "#FFD43B", Position: 2},
			{Name: "Animation", Icon: "play", Color: "#FF6B6B", Position: 3},
			{Name: "Lighting", Icon: "lightbulb", Color: "#9C27B0", Position: 4},
			{Name: "Rendering", Icon: "image", Color: "#00BCD4", Position: 5},
			{Name: "Compositing", Icon: "layers", Color: "#8BC34A", Position: 6},
			{Name: "Review", Icon: "eye", Color: "#FF9800", Position: 7},
		},
		Statuses: []AnatomyItem{
			{Name: "Not Started", Icon: "circle", Color: "#A0A6AC", Position: 0},
			{Name: "In Progress", Icon: "play-circle", Color: "#4A9EFF", Position: 1},
			{Name: "Review", Icon: "eye", Color: "#FFD43B", Position: 2},
			{Name: "Done", Icon: "check-circle", Color: "#51CF66", Position: 3},
			{Name: "On Hold", Icon: "pause-circle", Color: "#FF9800", Position: 4},
			{Name: "Cancelled", Icon: "times-circle", Color: "#F44336", Position: 5},
		},
		Tags:      []AnatomyItem{},
		LinkTypes: []AnatomyItem{},
	}
}

// Project is the root entity. Exactly one project is loaded per manager
// session; it owns the anatomy vocabulary and the render settings.
type Project struct {
	Base
	Code       string  `json:"code,omitempty"`
	Path       string  `json:"path"`
	FPS        int     `json:"fps"`
	Resolution []int   `json:"resolution"`
	Library    bool    `json:"library,omitempty"`
	Anatomy    Anatomy `json:"anatomy"`
}

// NewProject constructs a project with default anatomy. Resolution is
// [width, height]; pass nil for the 1920x1080 default.
func NewProject(name, code, path string, fps int, resolution []int, createdBy string) *Project {
	if fps <= 0 {
		fps = 24
	}
	if len(resolution) != 2 {
		resolution = []int{1920, 1080}
	}
	return &Project{
		Base:       newBase(name, createdBy),
		Code:       code,
		Path:       path,
		FPS:        fps,
		Resolution: resolution,
		Anatomy:    DefaultAnatomy(),
	}
}

// Validate checks project invariants.
func (p *Project) Validate() []Violation {
	vs := p.validateBase()
	if p.Path == "" {
		vs = append(vs, Violation{Field: "path", Msg: "is required"})
	}
	if p.FPS <= 0 {
		vs = append(vs, Violation{Field: "fps", Msg: fmt.Sprintf("must be positive, got %d", p.FPS)})
	}
	if len(p.Resolution) != 2 {
		vs = append(vs, Violation{Field: "resolution", Msg: "must be [width, height]"})
	} else {
		for _, r := range p.Resolution {
			if r <= 0 {
				vs = append(vs, Violation{Field: "resolution", Msg: "values must be positive"})
				break
			}
		}
	}
	return vs
}
