package locate

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSupported(t *testing.T) {
	for _, path := range []string{"a.json", "b.yaml", "c.yml", "D.JSON"} {
		if !Supported(path) {
			t.Errorf("Supported(%q) = false", path)
		}
	}
	for _, path := range []string{"a.txt", "b.po", "c"} {
		if Supported(path) {
			t.Errorf("Supported(%q) = true", path)
		}
	}
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "en.json")

	path := filepath.Join(dir, "en.json")
	files, err := Resolve([]string{path})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(files, []string{path}) {
		t.Errorf("files = %v", files)
	}
}

func TestResolve_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "en.json", "ru.yaml", "sub/de.yml", "README.txt")

	files, err := Resolve([]string{dir})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []string{
		filepath.Join(dir, "en.json"),
		filepath.Join(dir, "ru.yaml"),
		filepath.Join(dir, "sub", "de.yml"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestResolve_Glob(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "en.json", "ru.json", "notes.txt")

	files, err := Resolve([]string{filepath.Join(dir, "*.json")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("files = %v, want 2 JSON files", files)
	}
}

func TestResolve_Dedup(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "en.json")

	path := filepath.Join(dir, "en.json")
	files, err := Resolve([]string{path, path, filepath.Join(dir, "*.json")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("files = %v, want single entry", files)
	}
}

func TestResolve_ZeroMatchesIsHardError(t *testing.T) {
	dir := t.TempDir()

	if _, err := Resolve([]string{filepath.Join(dir, "*.json")}); err == nil {
		t.Error("expected error for zero matches")
	}
	if _, err := Resolve([]string{dir}); err == nil {
		t.Error("expected error for empty directory")
	}
}
