package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	content := `
name = "ChatGPT export 2025"
year = 2025
source = "chatgpt"
`
	if err := os.WriteFile(filepath.Join(dir, "corpus.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m == nil {
		t.Fatal("Load() returned nil manifest")
	}
	if m.Name != "ChatGPT export 2025" {
		t.Errorf("Name = %q", m.Name)
	}
	if m.Year != 2025 {
		t.Errorf("Year = %d, want 2025", m.Year)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	content := "name: archive\nyear: 2024\nnotes: partial export\n"
	if err := os.WriteFile(filepath.Join(dir, "corpus.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m == nil || m.Name != "archive" || m.Year != 2024 || m.Notes != "partial export" {
		t.Errorf("manifest = %+v", m)
	}
}

func TestLoad_TOMLWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "corpus.toml"), []byte(`name = "from-toml"`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "corpus.yaml"), []byte("name: from-yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Name != "from-toml" {
		t.Errorf("Name = %q, want from-toml", m.Name)
	}
}

func TestLoad_MissingManifest(t *testing.T) {
	m, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m != nil {
		t.Errorf("Load() = %+v, want nil for missing manifest", m)
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "corpus.toml"), []byte(`name = [unclosed`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load() should fail on malformed TOML")
	}
}
