// Package entity defines the typed records of the hierarchical project
// store: Project, Folder, Task, Product, Version, Representation and User.
//
// Every entity carries the same base shape (id, name, label, status, tags,
// timestamps and an open attrib bag). Entities are constructed through the
// New* functions, which assign a fresh id and both timestamps; required
// domain fields never live in the attrib bag.
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies an entity type. It doubles as the storage subdirectory
// name for the one-document-per-entity layout.
type Kind string

const (
	KindProject        Kind = "project"
	KindFolder         Kind = "folder"
	KindTask           Kind = "task"
	KindProduct        Kind = "product"
	KindVersion        Kind = "version"
	KindRepresentation Kind = "representation"
	KindUser           Kind = "user"
)

// Kinds lists every entity kind in containment order (owners first).
func Kinds() []Kind {
	return []Kind{
		KindProject,
		KindFolder,
		KindTask,
		KindProduct,
		KindVersion,
		KindRepresentation,
		KindUser,
	}
}

// Base holds the fields shared by every entity.
//
// Attrib is an open key/value bag for extension data that is not modeled
// explicitly. Unknown keys written by newer tools survive a load/save
// round trip untouched.
type Base struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Label     string         `json:"label,omitempty"`
	Status    string         `json:"status,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Attrib    map[string]any `json:"attrib,omitempty"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	CreatedBy string         `json:"created_by,omitempty"`
	UpdatedBy string         `json:"updated_by,omitempty"`
}

// newBase constructs the shared fields for a fresh entity.
func newBase(name, createdBy string) Base {
	now := time.Now().UTC()
	return Base{
		ID:        uuid.NewString(),
		Name:      name,
		Label:     name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
		UpdatedBy: createdBy,
	}
}

// Touch bumps the update timestamp. Call it on every mutation before the
// entity is persisted.
func (b *Base) Touch(by string) {
	b.UpdatedAt = time.Now().UTC()
	if by != "" {
		b.UpdatedBy = by
	}
}

// DisplayLabel returns the label, falling back to the name.
func (b *Base) DisplayLabel() string {
	if b.Label != "" {
		return b.Label
	}
	return b.Name
}

// HasTag reports whether the entity carries the given tag.
func (b *Base) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends a tag if not already present.
func (b *Base) AddTag(tag string) {
	if !b.HasTag(tag) {
		b.Tags = append(b.Tags, tag)
	}
}

// Violation describes a single validation failure on an entity field.
type Violation struct {
	Field string
	Msg   string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Msg)
}

// JoinViolations renders a violation list as a single message.
func JoinViolations(vs []Violation) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, "; ")
}

// validateBase checks the fields every entity must carry.
func (b *Base) validateBase() []Violation {
	var vs []Violation
	if strings.TrimSpace(b.ID) == "" {
		vs = append(vs, Violation{Field: "id", Msg: "is required"})
	}
	if strings.TrimSpace(b.Name) == "" {
		vs = append(vs, Violation{Field: "name", Msg: "is required"})
	}
	if b.CreatedAt.IsZero() {
		vs = append(vs, Violation{Field: "created_at", Msg: "is required"})
	}
	if b.UpdatedAt.IsZero() {
		vs = append(vs, Violation{Field: "updated_at", Msg: "is required"})
	}
	return vs
}

// RemoveID deletes id from ids, preserving order. It returns the filtered
// slice and whether anything was removed. Used to keep owner containment
// lists consistent on entity deletion.
func RemoveID(ids []string, id string) ([]string, bool) {
	out := ids[:0]
	removed := false
	for _, v := range ids {
		if v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}
