package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Templates scans the configured directory for form templates
type Templates struct {
	directory string
	validator *Validator
}

// NewTemplates creates a template catalog over the given directory
func NewTemplates(directory string, validator *Validator) *Templates {
	return &Templates{
		directory: directory,
		validator: validator,
	}
}

// Directory returns the configured templates directory
func (t *Templates) Directory() string {
	return t.directory
}

// Resolve maps a template name to its path inside the templates directory.
// Only bare file names are accepted; path separators would escape the
// directory.
func (t *Templates) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty template name", ErrTemplateNotFound)
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("%w: template name must not contain path separators: %s", ErrTemplateNotFound, name)
	}

	path := filepath.Join(t.directory, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	} else if err != nil {
		return "", fmt.Errorf("cannot access template %s: %w", name, err)
	}

	return path, nil
}

// List returns the PDF templates available in the directory, sorted by name
func (t *Templates) List() (*TemplateListResult, error) {
	entries, err := os.ReadDir(t.directory)
	if err != nil {
		return nil, fmt.Errorf("cannot read template directory %s: %w", t.directory, err)
	}

	result := &TemplateListResult{
		Directory: t.directory,
		Templates: []TemplateInfo{},
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if err := t.validator.ValidateFileInfo(entry.Name(), info); err != nil {
			continue
		}

		result.Templates = append(result.Templates, TemplateInfo{
			Name:         entry.Name(),
			Path:         filepath.Join(t.directory, entry.Name()),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format(time.RFC3339),
		})
	}

	sort.Slice(result.Templates, func(i, j int) bool {
		return result.Templates[i].Name < result.Templates[j].Name
	})
	result.TotalCount = len(result.Templates)

	return result, nil
}

// Names returns just the template file names, sorted
func (t *Templates) Names() ([]string, error) {
	list, err := t.List()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(list.Templates))
	for i, tmpl := range list.Templates {
		names[i] = tmpl.Name
	}
	return names, nil
}
