package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/sloimpact/internal/model"
)

// Parse reads a model document, choosing the decoder by file extension.
func Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("model file not found: %s", path)}
	}
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(data, filepath.Base(path))
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported model format %q (want .yaml, .yml or .cue)", filepath.Ext(path))}
	}
}

// LoadFile parses the document at path and resolves it in a fresh Session.
func LoadFile(path string) (*model.System, error) {
	doc, err := Parse(path)
	if err != nil {
		return nil, err
	}
	sys, err := NewSession().Resolve(doc)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", filepath.Base(path), err)
	}
	return sys, nil
}
