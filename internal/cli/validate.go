package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sloimpact/internal/model"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool                 `json:"valid"`
	SystemID   string               `json:"system_id,omitempty"`
	Errors     []Problem            `json:"errors,omitempty"`
	Warnings   []model.CycleWarning `json:"warnings,omitempty"`
	Interfaces int                  `json:"interfaces"`
	Components int                  `json:"components"`
	Tasks      int                  `json:"tasks"`
	Rules      int                  `json:"rules"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <model-file>",
		Short: "Check a model document without importing it",
		Long: `Parse a YAML or CUE model document, resolve its references and run the
consistency checks an import would run.

Cycles in the consumer graph are reported as warnings: a violation entering
a cycle only terminates when the engine runs with an impact budget.

Exit codes:
  0 - Model is valid (warnings allowed)
  1 - Model is invalid
  2 - File missing or in an unsupported format`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	sys, warnings, err := loadModel(path)
	if err != nil {
		if isFileProblem(err) {
			p := problemsOf(err)[0]
			return f.Fail(ExitCommandError, p.Code, p.Message, nil)
		}
		return outputValidationErrors(f, problemsOf(err))
	}

	f.VerboseLog("Resolved system %s (%d interfaces, %d components)",
		sys.ID, len(sys.Architecture.Interfaces), len(sys.Architecture.Components))

	result := ValidationResult{
		Valid:      true,
		SystemID:   sys.ID,
		Warnings:   warnings,
		Interfaces: len(sys.Architecture.Interfaces),
		Components: len(sys.Architecture.Components),
		Tasks:      len(sys.Process.Tasks),
		Rules:      len(sys.Rules),
	}
	if f.JSON() {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintf(w, "✓ Model %s valid\n", sys.ID)
	fmt.Fprintf(w, "  %d interfaces, %d components, %d tasks, %d rules\n",
		result.Interfaces, result.Components, result.Tasks, result.Rules)
	for _, cw := range warnings {
		fmt.Fprintf(w, "  warning: %s (%s)\n", cw.Message, strings.Join(cw.Path, " -> "))
	}
	return nil
}

// outputValidationErrors reports every problem. Invalid models exit with 1.
func outputValidationErrors(f *OutputFormatter, problems []Problem) error {
	exit := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(problems)))

	if f.JSON() {
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: problems},
			Error:  &CLIError{Code: problems[0].Code, Message: problems[0].Message},
		}); err != nil {
			return err
		}
		return exit
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, p := range problems {
		if p.Field != "" {
			fmt.Fprintf(f.Writer, "%s\n", p.Field)
		}
		fmt.Fprintf(f.Writer, "  %s: %s\n\n", p.Code, p.Message)
	}
	return exit
}
