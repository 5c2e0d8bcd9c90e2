// Package dcc maps content-creation applications to the scene file
// extensions they own. The registry is a TOML file so studios can add
// site-local applications without a rebuild.
package dcc

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// App describes one registered application.
type App struct {
	Name        string   `toml:"name"`
	DisplayName string   `toml:"display_name"`
	Executables []string `toml:"executables"`
	Extensions  []string `toml:"extensions"`
}

// Registry holds all known applications.
type Registry struct {
	Apps []App `toml:"app"`
}

// DefaultRegistry covers the common packages out of the box.
func DefaultRegistry() *Registry {
	return &Registry{Apps: []App{
		{Name: "maya", DisplayName: "Autodesk Maya", Executables: []string{"maya"}, Extensions: []string{".ma", ".mb"}},
		{Name: "houdini", DisplayName: "SideFX Houdini", Executables: []string{"houdini", "hython"}, Extensions: []string{".hip", ".hipnc", ".hiplc"}},
		{Name: "nuke", DisplayName: "Foundry Nuke", Executables: []string{"nuke"}, Extensions: []string{".nk"}},
		{Name: "blender", DisplayName: "Blender", Executables: []string{"blender"}, Extensions: []string{".blend"}},
		{Name: "photoshop", DisplayName: "Adobe Photoshop", Executables: []string{"photoshop"}, Extensions: []string{".psd", ".psb"}},
	}}
}

// LoadRegistry reads a TOML registry file. A missing file falls back to
// the defaults; a present but broken file is an error.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultRegistry(), nil
	}
	var reg Registry
	if _, err := toml.DecodeFile(path, &reg); err != nil {
		return nil, fmt.Errorf("dcc: decode registry %s: %w", path, err)
	}
	if len(reg.Apps) == 0 {
		return DefaultRegistry(), nil
	}
	return &reg, nil
}

// AppForExt returns the application owning a file extension.
func (r *Registry) AppForExt(ext string) (App, bool) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, app := range r.Apps {
		for _, e := range app.Extensions {
			if strings.EqualFold(e, ext) {
				return app, true
			}
		}
	}
	return App{}, false
}

// Detect resolves the first executable candidate present on PATH,
// reporting whether the application is installed on this machine.
func (a App) Detect() (string, bool) {
	for _, exe := range a.Executables {
		if path, err := exec.LookPath(exe); err == nil {
			return path, true
		}
	}
	return "", false
}

// Lookup returns an application by name.
func (r *Registry) Lookup(name string) (App, bool) {
	for _, app := range r.Apps {
		if strings.EqualFold(app.Name, name) {
			return app, true
		}
	}
	return App{}, false
}

// Extensions returns every registered extension, sorted and deduplicated.
func (r *Registry) Extensions() []string {
	set := make(map[string]bool)
	for _, app := range r.Apps {
		for _, e := range app.Extensions {
			set[strings.ToLower(e)] = true
		}
	}
	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
