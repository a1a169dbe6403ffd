package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points the config loader at an empty home and working directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	var out bytes.Buffer
	cmd := rootCmd(&out, &bytes.Buffer{})
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := "semcodec version " + Version
	if !strings.HasPrefix(out.String(), want) {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}

func TestRootExportsCatalog(t *testing.T) {
	dir := isolate(t)
	src := `title: Example catalog
publisher:
  id: https://example.org/org
  name: Example Org
datasets:
  - id: https://data.example.org/dataset/air
    title: Air quality
`
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	var out bytes.Buffer
	cmd := rootCmd(&out, &bytes.Buffer{})
	cmd.SetArgs([]string{"export", path, "--format", "turtle"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "dcat:Catalog") {
		t.Errorf("expected a dcat:Catalog node, got:\n%s", out.String())
	}
}

func TestRootConfigFile(t *testing.T) {
	dir := isolate(t)
	configPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(configPath, []byte("export:\n  format: ntriples\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var out bytes.Buffer
	cmd := rootCmd(&out, &bytes.Buffer{})
	cmd.SetArgs([]string{"--config", configPath, "config", "show"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "format: ntriples") {
		t.Errorf("expected configured format, got:\n%s", out.String())
	}
}

func TestRootRejectsBadLogLevel(t *testing.T) {
	isolate(t)
	cmd := rootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "loud", "types"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for an unknown log level")
	}
}
