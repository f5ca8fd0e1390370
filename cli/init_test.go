package cli

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyEmbeddedDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := copyEmbeddedDir(starterFS, "_starter", tmpDir); err != nil {
		t.Fatalf("unexpected error copying embedded dir: %v", err)
	}

	err := fs.WalkDir(starterFS, "_starter", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel("_starter", path)
		if err != nil {
			return err
		}
		if _, err := os.Stat(filepath.Join(tmpDir, rel)); err != nil {
			t.Errorf("expected file %s to exist, but got error: %v", rel, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected walk error: %v", err)
	}
}

func TestCopyEmbeddedDir_KeepsExistingFiles(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "public", "app.js")
	os.MkdirAll(filepath.Dir(existing), 0755)
	os.WriteFile(existing, []byte("mine"), 0644)

	captureOutput(func() {
		if err := copyEmbeddedDir(starterFS, "_starter", tmpDir); err != nil {
			t.Fatalf("copy failed: %v", err)
		}
	})

	data, _ := os.ReadFile(existing)
	if string(data) != "mine" {
		t.Errorf("existing file was overwritten: %q", data)
	}
}

func TestInitCommand_CreatesProject(t *testing.T) {
	tmpDir := t.TempDir()

	out := captureOutput(func() {
		if err := runCommand(InitCommand, "init", tmpDir); err != nil {
			t.Fatalf("init failed: %v", err)
		}
	})

	for _, rel := range []string{
		"backbone.config.yml",
		"views/chrome.jst.tpl",
		"views/editor/edit.jst.tpl",
		"public/index.html",
		"public/app.js",
	} {
		if _, err := os.Stat(filepath.Join(tmpDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}
	if !strings.Contains(out, "Project created successfully") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestInitCommand_StarterPassesCheck(t *testing.T) {
	tmpDir := t.TempDir()
	captureOutput(func() {
		if err := runCommand(InitCommand, "init", tmpDir); err != nil {
			t.Fatalf("init failed: %v", err)
		}
	})

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(tmpDir)

	out := captureOutput(func() {
		if err := runCommand(CheckCommand, "check"); err != nil {
			t.Errorf("starter templates failed check: %v", err)
		}
	})
	if !strings.Contains(out, "editor/edit") || !strings.Contains(out, "chrome") {
		t.Errorf("expected starter templates in output: %s", out)
	}
}
