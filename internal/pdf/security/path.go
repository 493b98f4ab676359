package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator confines file access to the templates directory
type PathValidator struct {
	templatesDirectory string
}

// NewPathValidator creates a new path validator rooted at the given directory
func NewPathValidator(templatesDirectory string) (*PathValidator, error) {
	if templatesDirectory == "" {
		return nil, fmt.Errorf("templates directory cannot be empty")
	}

	// The directory is taken as configured; it may be created later
	return &PathValidator{
		templatesDirectory: templatesDirectory,
	}, nil
}

// ValidatePath checks that a path stays inside the templates directory
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	// If the templates directory doesn't exist yet, skip validation
	if _, err := os.Stat(v.templatesDirectory); os.IsNotExist(err) {
		return nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	isWithin, err := v.IsPathWithinTemplates(absPath)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}

	if !isWithin {
		return fmt.Errorf("path is outside templates directory: %s", path)
	}

	return nil
}

// IsPathWithinTemplates checks whether a path lies inside the templates
// directory, resolving symlinks on both sides so a link cannot smuggle a
// template in from elsewhere on disk.
func (v *PathValidator) IsPathWithinTemplates(path string) (bool, error) {
	// If the templates directory doesn't exist yet, allow any path
	if _, err := os.Stat(v.templatesDirectory); os.IsNotExist(err) {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	absDir, err := filepath.Abs(v.templatesDirectory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve templates directory: %w", err)
	}

	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(absDir)

	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}

	realDir := cleanDir
	if resolved, err := filepath.EvalSymlinks(cleanDir); err == nil {
		realDir = resolved
	}

	dirWithSep := cleanDir
	if !strings.HasSuffix(dirWithSep, string(filepath.Separator)) {
		dirWithSep += string(filepath.Separator)
	}

	realDirWithSep := realDir
	if !strings.HasSuffix(realDirWithSep, string(filepath.Separator)) {
		realDirWithSep += string(filepath.Separator)
	}

	pathOk := strings.HasPrefix(cleanPath, dirWithSep) || cleanPath == cleanDir ||
		strings.HasPrefix(cleanPath, realDirWithSep) || cleanPath == realDir
	realPathOk := strings.HasPrefix(realPath, dirWithSep) || realPath == cleanDir ||
		strings.HasPrefix(realPath, realDirWithSep) || realPath == realDir

	return pathOk && realPathOk, nil
}

// TemplatesDirectory returns the configured templates directory
func (v *PathValidator) TemplatesDirectory() string {
	return v.templatesDirectory
}

// NormalizePath resolves a template path to an absolute path inside the
// templates directory. Relative paths are anchored at the directory.
func (v *PathValidator) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	// Strip null bytes before they reach the filesystem
	path = strings.ReplaceAll(path, "\x00", "")

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.templatesDirectory, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if err := v.ValidatePath(absPath); err != nil {
		return "", err
	}

	return absPath, nil
}
