package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputManager resolves report file locations under a base directory
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// ErrOutsideDir is returned for file names that would resolve outside their base directory
var ErrOutsideDir = errors.New("file name must not contain a directory")

// ConfinedPath joins a plain file name onto dir. Names that are absolute, carry a
// directory component or are "." / ".." are rejected with ErrOutsideDir.
func ConfinedPath(dir, fileName string) (string, error) {
	if fileName == "" || fileName == "." || fileName == ".." ||
		filepath.IsAbs(fileName) || filepath.Base(fileName) != fileName ||
		strings.ContainsAny(fileName, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrOutsideDir, fileName)
	}
	return filepath.Join(dir, fileName), nil
}

// GetOutputFilePath returns the full path for a report file inside the base directory,
// creating the directory
func (om *OutputManager) GetOutputFilePath(fileName string) (string, error) {
	path, err := ConfinedPath(om.BaseOutputDir, fileName)
	if err != nil {
		return "", err
	}
	if err := om.EnsureOutputDirExists(); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return path, nil
}

// GetFileType determines the file type based on extension
func (om *OutputManager) GetFileType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".xlsx":
		return "excel"
	default:
		return "unknown"
	}
}

// GetFileSize returns the size of a file in bytes
func (om *OutputManager) GetFileSize(filePath string) (int64, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return fileInfo.Size(), nil
}

// EnsureOutputDirExists ensures the base output directory exists
func (om *OutputManager) EnsureOutputDirExists() error {
	return os.MkdirAll(om.BaseOutputDir, 0755)
}
