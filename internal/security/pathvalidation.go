// Package security guards the destinations cmd/routebook writes to: a
// segment's profile/map SVG, an optional debug elevation PNG, and an
// optional waypoints.gpx export. All three only ever belong under the
// process's temp directory or its working directory, so any path that
// resolves outside both — most likely a ../-laden -out flag — is
// rejected before the write happens.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// validateWithinDirectory reports whether filePath resolves (after
// cleaning and making both sides absolute) to a location inside dir.
func validateWithinDirectory(filePath, dir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("resolve export path: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve allowed directory: %w", err)
	}

	relPath, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return fmt.Errorf("export path outside allowed directory: %w", err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || filepath.IsAbs(relPath) {
		return fmt.Errorf("export path %s escapes %s", filePath, dir)
	}
	return nil
}

// ValidateExportPath rejects any export destination outside the
// process's temp directory or current working directory — the two
// places cmd/routebook's -out flag and internal/debugplot ever target.
func ValidateExportPath(filePath string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	tempDir := os.TempDir()
	if validateWithinDirectory(filePath, tempDir) == nil {
		return nil
	}
	if validateWithinDirectory(filePath, cwd) == nil {
		return nil
	}
	return fmt.Errorf("export path %s must be within %s or %s", filePath, tempDir, cwd)
}
