package file

import (
	"fmt"
	"path/filepath"

	domainprompt "github.com/alanyang/prompt-manager/internal/domain/prompt"
)

// WriteExport saves f under its own name in dir and returns the full path.
func WriteExport(dir string, f domainprompt.ExportFile) (string, error) {
	data, err := f.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	path := filepath.Join(dir, f.Name)
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("write export %s: %w", path, err)
	}
	return path, nil
}
