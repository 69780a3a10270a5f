package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// ImportResult describes a stored model.
type ImportResult struct {
	ArchitectureID string `json:"architecture_id"`
	SystemID       string `json:"system_id"`
	Warnings       int    `json:"warnings"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <model-file>",
		Short: "Validate a model and store it",
		Long: `Validate a model document and store it in the database under its
architecture ID, replacing any model stored under the same ID.

Examples:
  sloimpact import shop.yaml --db ./sloimpact.db
  sloimpact import shop.cue --db ./sloimpact.db --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(ctx context.Context, opts *ImportOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	sys, warnings, err := loadModel(path)
	if err != nil {
		if isFileProblem(err) {
			p := problemsOf(err)[0]
			return f.Fail(ExitCommandError, p.Code, p.Message, nil)
		}
		return outputValidationErrors(f, problemsOf(err))
	}

	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveSystem(ctx, sys); err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	result := ImportResult{
		ArchitectureID: sys.Architecture.ID,
		SystemID:       sys.ID,
		Warnings:       len(warnings),
	}
	if f.JSON() {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "✓ Imported %s as architecture %s\n", sys.ID, sys.Architecture.ID)
	if len(warnings) > 0 {
		fmt.Fprintf(f.Writer, "  %d cycle warning(s); run validate for details\n", len(warnings))
	}
	return nil
}
