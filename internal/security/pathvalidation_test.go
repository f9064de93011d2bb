package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	unsafeDir := filepath.Join(tmpDir, "unsafe")
	require.NoError(t, os.MkdirAll(unsafeDir, 0o755))

	tests := []struct {
		name      string
		filePath  string
		dir       string
		wantError bool
	}{
		{"path inside dir", filepath.Join(tmpDir, "profile-1.svg"), tmpDir, false},
		{"nested path inside dir", filepath.Join(tmpDir, "out", "map-1.svg"), tmpDir, false},
		{"dot-dot escape", filepath.Join(tmpDir, "..", "profile-1.svg"), tmpDir, true},
		{"relative escape from start", "../../../etc/passwd", tmpDir, true},
		{"absolute path outside dir", "/etc/passwd", tmpDir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWithinDirectory(tt.filePath, tt.dir)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateExportPath_TempDir(t *testing.T) {
	path := filepath.Join(os.TempDir(), "routebook-profile-1.svg")
	assert.NoError(t, ValidateExportPath(path))
}

func TestValidateExportPath_WorkingDirectory(t *testing.T) {
	originalWd, err := os.Getwd()
	require.NoError(t, err)

	workDir := t.TempDir()
	require.NoError(t, os.Chdir(workDir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(originalWd)) })

	assert.NoError(t, ValidateExportPath("waypoints.gpx"))
	assert.NoError(t, ValidateExportPath(filepath.Join("segments", "map-1.svg")))
}

func TestValidateExportPath_RejectsEscape(t *testing.T) {
	assert.Error(t, ValidateExportPath("/etc/passwd"))
	assert.Error(t, ValidateExportPath("../../../etc/passwd"))
}
