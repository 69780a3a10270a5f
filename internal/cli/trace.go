package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sloimpact/internal/model"
	"github.com/roach88/sloimpact/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database     string
	Impact       string
	Architecture string // optional; adds element names
}

// ChainLink is one impact of a traced chain.
type ChainLink struct {
	ID       string         `json:"id"`
	Location string         `json:"location"`
	Cause    string         `json:"cause,omitempty"`
	Element  *model.Element `json:"element,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Impact string      `json:"impact"`
	Chain  []ChainLink `json:"chain"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the causal chain of an impact",
		Long: `Walk the ledger from an impact back to the violation that started it.

The chain is printed head first: the given impact, the impact that caused
it, and so on up to the impact at the violated interface. With --arch the
locations are resolved to element names of that model.

Examples:
  sloimpact trace --db ./sloimpact.db --impact 0192f3c4-...
  sloimpact trace --db ./sloimpact.db --impact 0192f3c4-... --arch arch-shop --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Impact, "impact", "", "impact ID to trace (required)")
	cmd.Flags().StringVar(&opts.Architecture, "arch", "", "architecture ID used to name locations")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("impact")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	chain, err := st.ReadChain(ctx, opts.Impact)
	if errors.Is(err, store.ErrNotFound) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("impact %q not found", opts.Impact), nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	var sys *model.System
	if opts.Architecture != "" {
		sys, err = st.FindSystemByArchitectureID(ctx, opts.Architecture)
		if errors.Is(err, store.ErrNotFound) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("architecture %q not found", opts.Architecture), nil)
		}
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
	}

	result := TraceResult{Impact: opts.Impact, Chain: make([]ChainLink, 0, len(chain))}
	for _, imp := range chain {
		link := ChainLink{ID: imp.ID, Location: imp.Location.String(), Cause: imp.CauseID}
		if sys != nil {
			el, err := sys.Describe(imp.Location)
			if err != nil {
				f.VerboseLog("cannot name %s: %v", link.Location, err)
			} else {
				link.Element = &el
			}
		}
		result.Chain = append(result.Chain, link)
	}

	if f.JSON() {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintf(w, "Impact chain of %s (%d impacts)\n\n", opts.Impact, len(result.Chain))
	for i, link := range result.Chain {
		label := link.Location
		if link.Element != nil {
			label = fmt.Sprintf("%s %s", link.Element.Type, link.Element.Name)
			if c := link.Element.Container; c != nil {
				label += fmt.Sprintf(" in %s %s", c.Type, c.Name)
			}
		}
		fmt.Fprintf(w, "%2d. %s  [%s]\n", i+1, label, link.ID)
	}
	return nil
}
