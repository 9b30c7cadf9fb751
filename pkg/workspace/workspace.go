// Package workspace maps stylesheet URLs to filesystem locations under a
// configured pair of source and destination roots.
package workspace

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Workspace owns the source/destination directory pair for an optimize pass.
// Source paths are where the on-disk stylesheets live; destination paths
// mirror the same relative layout and receive the transformed output.
type Workspace struct {
	sourceDir string
	destDir   string
}

// New creates a Workspace and ensures the destination root exists.
func New(sourceDir, destDir string) (*Workspace, error) {
	if sourceDir == "" || destDir == "" {
		return nil, fmt.Errorf("workspace requires both source and destination directories")
	}
	if err := os.MkdirAll(destDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}
	return &Workspace{sourceDir: sourceDir, destDir: destDir}, nil
}

// SourceDir returns the configured source root.
func (w *Workspace) SourceDir() string { return w.sourceDir }

// DestDir returns the configured destination root.
func (w *Workspace) DestDir() string { return w.destDir }

// relPath extracts the URL's path component as a root-relative file path and
// rejects anything that would escape the workspace roots.
func relPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid stylesheet URL: %w", err)
	}
	p := strings.TrimPrefix(u.Path, "/")
	if p == "" {
		return "", fmt.Errorf("stylesheet URL has no path: %s", rawURL)
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("stylesheet path escapes workspace root: %s", rawURL)
	}
	return clean, nil
}

// SourcePath resolves the on-disk source file for a stylesheet URL.
func (w *Workspace) SourcePath(rawURL string) (string, error) {
	rel, err := relPath(rawURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(w.sourceDir, rel), nil
}

// DestPath resolves the destination file for a stylesheet URL, creating its
// parent directories so the caller can write immediately.
func (w *Workspace) DestPath(rawURL string) (string, error) {
	rel, err := relPath(rawURL)
	if err != nil {
		return "", err
	}
	full := filepath.Join(w.destDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
		return "", fmt.Errorf("failed to create destination subdirectory: %w", err)
	}
	return full, nil
}
