package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sloimpact/internal/model"
)

// Supported document formats.
const (
	FormatYAML = "yaml"
	FormatCUE  = "cue"
	FormatJSON = "json"
)

// FormatFromContentType maps an HTTP content type to a document format.
// Unknown types default to YAML.
func FormatFromContentType(contentType string) string {
	ct, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	switch strings.TrimSpace(ct) {
	case "application/json":
		return FormatJSON
	case "application/cue", "text/cue", "text/x-cue":
		return FormatCUE
	default:
		return FormatYAML
	}
}

// Decode parses data in the given format.
func Decode(data []byte, format string) (*Document, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(data)
	case FormatCUE:
		return ParseCUE(data, "model.cue")
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		var doc Document
		if err := dec.Decode(&doc); err != nil {
			return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("parse json: %v", err)}
		}
		return &doc, nil
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported model format %q", format)}
	}
}

// Build resolves doc in a fresh Session and checks the result.
//
// Consistency problems fail the build; cycles in the consumer graph are
// returned as warnings.
func Build(doc *Document) (*model.System, []model.CycleWarning, error) {
	sys, err := NewSession().Resolve(doc)
	if err != nil {
		return nil, nil, err
	}
	if verrs := model.Validate(sys); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, ve := range verrs {
			errs[i] = ve
		}
		return nil, nil, errors.Join(errs...)
	}
	return sys, model.AnalyzeCycles(sys), nil
}
