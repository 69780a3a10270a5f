package cli

import (
	"errors"

	"github.com/roach88/sloimpact/internal/loader"
	"github.com/roach88/sloimpact/internal/model"
	"github.com/roach88/sloimpact/internal/store"
)

// Problem is one reported defect of a model document.
type Problem struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// loadModel parses and builds the model document at path.
func loadModel(path string) (*model.System, []model.CycleWarning, error) {
	doc, err := loader.Parse(path)
	if err != nil {
		return nil, nil, err
	}
	return loader.Build(doc)
}

// problemsOf flattens a (possibly joined) loader or validation error.
func problemsOf(err error) []Problem {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []Problem
		for _, e := range joined.Unwrap() {
			out = append(out, problemsOf(e)...)
		}
		return out
	}

	var loadErr *loader.LoadError
	if errors.As(err, &loadErr) {
		return []Problem{{Code: loadErr.Code, Field: loadErr.Field, Message: loadErr.Message}}
	}
	var verr model.ValidationError
	if errors.As(err, &verr) {
		return []Problem{{Code: verr.Code, Field: verr.Field, Message: verr.Message}}
	}
	return []Problem{{Code: ErrCodeGeneric, Message: err.Error()}}
}

// isFileProblem reports whether the document could not be read at all, as
// opposed to being read and found invalid.
func isFileProblem(err error) bool {
	var loadErr *loader.LoadError
	if !errors.As(err, &loadErr) {
		return false
	}
	return loadErr.Code == loader.ErrCodeNotFound || loadErr.Code == loader.ErrCodeFormat
}

// openStore opens the SQLite database at path or fails with ExitCommandError.
func openStore(f *OutputFormatter, path string) (*store.Store, error) {
	if path == "" {
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, "--db is required", nil)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	f.VerboseLog("Opened database %s", path)
	return st, nil
}
