package loader

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// ParseCUE compiles a CUE model document, checks it against the #System
// schema and decodes it.
//
// filename is only used in error positions.
func ParseCUE(data []byte, filename string) (*Document, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#System")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var doc Document
	if err := unified.Decode(&doc); err != nil {
		return nil, formatCUEError(err)
	}
	return &doc, nil
}

// formatCUEError turns a CUE error list into a LoadError carrying the first
// position CUE reports.
func formatCUEError(err error) *LoadError {
	msg := errors.Details(err, nil)
	for _, e := range errors.Errors(err) {
		if pos := e.Position(); pos.IsValid() {
			return &LoadError{
				Code:    ErrCodeParse,
				Field:   fmt.Sprintf("%s:%d:%d", pos.Filename(), pos.Line(), pos.Column()),
				Message: e.Error(),
			}
		}
	}
	return &LoadError{Code: ErrCodeParse, Message: msg}
}
