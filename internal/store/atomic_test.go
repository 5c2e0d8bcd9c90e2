package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "doc.json")

	want := doc{Name: "hero", Count: 3}
	if err := WriteJSON(path, &want, false); err != nil {
		t.Fatal(err)
	}

	var got doc
	if err := ReadJSON(path, &got); err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	for i := 0; i < 5; i++ {
		if err := WriteJSON(path, &doc{Count: i}, true); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("stray temp file %s", e.Name())
		}
	}
}

func TestBackupKeepsPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")

	if err := WriteJSON(path, &doc{Name: "first"}, true); err != nil {
		t.Fatal(err)
	}
	// First write has nothing to back up.
	if _, err := os.Stat(path + BackupSuffix); !os.IsNotExist(err) {
		t.Fatalf("unexpected backup after first write: %v", err)
	}

	if err := WriteJSON(path, &doc{Name: "second"}, true); err != nil {
		t.Fatal(err)
	}

	var backup doc
	if err := ReadJSON(path+BackupSuffix, &backup); err != nil {
		t.Fatal(err)
	}
	if backup.Name != "first" {
		t.Errorf("backup holds %q, want first", backup.Name)
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	var d doc
	err := ReadJSON(filepath.Join(dir, "missing.json"), &d)
	if !IsNotFound(err) {
		t.Errorf("missing file error = %v, want ErrNotFound", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	err = ReadJSON(bad, &d)
	if !IsCorrupt(err) {
		t.Errorf("corrupt file error = %v, want ErrCorrupt", err)
	}
}

func TestRestoreBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := WriteJSON(path, &doc{Name: "good"}, true); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(path, &doc{Name: "newer"}, true); err != nil {
		t.Fatal(err)
	}
	// Simulate corruption of the live document.
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := RestoreBackup(path); err != nil {
		t.Fatal(err)
	}
	var got doc
	if err := ReadJSON(path, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "good" {
		t.Errorf("restored %q, want good", got.Name)
	}
}
