package dcc

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRegistryLookups(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		ext  string
		app  string
		ok   bool
	}{
		{".ma", "maya", true},
		{"mb", "maya", true},
		{".HIP", "houdini", true},
		{".blend", "blender", true},
		{".exe", "", false},
	}
	for _, tt := range tests {
		app, ok := reg.AppForExt(tt.ext)
		if ok != tt.ok || (ok && app.Name != tt.app) {
			t.Errorf("AppForExt(%q) = %q, %v, want %q, %v", tt.ext, app.Name, ok, tt.app, tt.ok)
		}
	}

	if _, ok := reg.Lookup("nuke"); !ok {
		t.Error("Lookup(nuke) failed")
	}
	if _, ok := reg.Lookup("unknownapp"); ok {
		t.Error("Lookup(unknownapp) unexpectedly succeeded")
	}
}

func TestLoadRegistryFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dcc.toml")
	content := `
[[app]]
name = "katana"
display_name = "Foundry Katana"
executables = ["katana"]
extensions = [".katana"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(reg.Apps) != 1 {
		t.Fatalf("apps = %d, want 1", len(reg.Apps))
	}
	app, ok := reg.AppForExt(".katana")
	if !ok || app.DisplayName != "Foundry Katana" {
		t.Errorf("AppForExt(.katana) = %+v, %v", app, ok)
	}
}

func TestLoadRegistryMissingFallsBack(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Lookup("maya"); !ok {
		t.Error("expected default registry when file is missing")
	}
}

func TestExtensionsSortedUnique(t *testing.T) {
	exts := DefaultRegistry().Extensions()
	for i := 1; i < len(exts); i++ {
		if exts[i-1] >= exts[i] {
			t.Fatalf("extensions not sorted unique: %v", exts)
		}
	}
}
