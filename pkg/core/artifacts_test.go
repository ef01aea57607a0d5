package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewScreenshotArtifact(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4E, 0x47} // PNG header
	artifact := NewScreenshotArtifact("exec-1", "step-3", data)

	if artifact.Name != ArtifactScreenshot {
		t.Errorf("Name = %s, want %s", artifact.Name, ArtifactScreenshot)
	}
	if artifact.ContentType != ContentTypePNG {
		t.Errorf("ContentType = %s, want %s", artifact.ContentType, ContentTypePNG)
	}
	if artifact.Filename != "exec-1-step-3.png" {
		t.Errorf("Filename = %s, want exec-1-step-3.png", artifact.Filename)
	}
	if len(artifact.Body) != 4 {
		t.Errorf("Body length = %d, want 4", len(artifact.Body))
	}
}

func TestArtifact_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	artifact := NewScreenshotArtifact("exec-1", "step-1", []byte("png-bytes"))

	path, err := artifact.Write(dir)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "exec-1-step-1.png") {
		t.Errorf("path = %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "png-bytes" {
		t.Errorf("content = %q", content)
	}
}

func TestArtifact_WriteFailsOnBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	artifact := NewScreenshotArtifact("exec-1", "step-1", []byte("png"))
	if _, err := artifact.Write(filepath.Join(file, "nested")); err == nil {
		t.Error("Write under a regular file succeeded, want error")
	}
}
