package core

import (
	"fmt"
	"os"
	"path/filepath"
)

// Artifact is a debug artifact captured during playback, held in memory
// until written to the artifact directory.
type Artifact struct {
	Name        string `json:"name"`        // Descriptive name: screenshot, trace
	ContentType string `json:"contentType"` // MIME type: image/png, application/json
	Filename    string `json:"filename"`    // File name within the artifact directory
	Body        []byte `json:"-"`           // In-memory content (not serialized to JSON)
}

// Common artifact names
const (
	ArtifactScreenshot = "screenshot"
	ArtifactTrace      = "trace"
)

// Common content types
const (
	ContentTypePNG  = "image/png"
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// NewScreenshotArtifact creates a failure screenshot artifact named after
// the execution and the step that failed.
func NewScreenshotArtifact(executionID, stepID string, data []byte) Artifact {
	return Artifact{
		Name:        ArtifactScreenshot,
		ContentType: ContentTypePNG,
		Filename:    fmt.Sprintf("%s-%s.png", executionID, stepID),
		Body:        data,
	}
}

// Write persists the artifact under dir, creating the directory as needed,
// and returns the full path written.
func (a Artifact) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Body, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	return path, nil
}
