package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sloimpact/internal/alert"
	"github.com/roach88/sloimpact/internal/engine"
	"github.com/roach88/sloimpact/internal/store"
)

// PropagateOptions holds flags for the propagate command.
type PropagateOptions struct {
	*RootOptions
	Database     string
	Architecture string
	Rule         string
	Value        float64
	Period       float64
	MaxImpacts   int
}

// NewPropagateCommand creates the propagate command.
func NewPropagateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PropagateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "propagate",
		Short: "Calculate the impacts of a rule violation",
		Long: `Report a violation of an SLO rule of a stored model and calculate which
business-process tasks it reaches.

Every impact is appended to the database ledger and every notification is
recorded. Running the same violation twice writes a second, independent set
of impacts.

Exit codes:
  0 - Calculation finished
  1 - Calculation failed (e.g. impact budget exceeded)
  2 - Unknown architecture or rule, database error

Examples:
  sloimpact propagate --db ./sloimpact.db --arch arch-shop --rule slo-credit-latency
  sloimpact propagate --db ./sloimpact.db --arch arch-loop --rule slo-loop --max-impacts 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPropagate(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Architecture, "arch", "", "architecture ID of the model (required)")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "ID of the violated SLO rule (required)")
	cmd.Flags().Float64Var(&opts.Value, "value", 0, "observed value")
	cmd.Flags().Float64Var(&opts.Period, "period", 0, "observed period in seconds")
	cmd.Flags().IntVar(&opts.MaxImpacts, "max-impacts", engine.Unbounded, "abort after this many impacts (0 = unbounded)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("arch")
	_ = cmd.MarkFlagRequired("rule")

	return cmd
}

func runPropagate(ctx context.Context, opts *PropagateOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if opts.MaxImpacts < 0 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "--max-impacts must not be negative", nil)
	}

	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	logger := f.Logger()
	eng := engine.New(st, st, engine.WithMaxImpacts(opts.MaxImpacts), engine.WithLogger(logger))
	svc := alert.NewService(st, eng, alert.WithRecorder(st), alert.WithLogger(logger))

	report, err := svc.Receive(ctx, alert.Alert{
		AlertName:      "cli",
		AlertTime:      time.Now().UTC(),
		SloID:          opts.Rule,
		ArchitectureID: opts.Architecture,
		ActualValue:    opts.Value,
		ActualPeriod:   opts.Period,
	})
	if err != nil {
		return propagateFailure(f, err)
	}

	if f.JSON() {
		return f.Success(report)
	}

	w := f.Writer
	if len(report.Notifications) == 0 {
		fmt.Fprintf(w, "No task is affected by %s\n", report.RuleID)
		return nil
	}
	for _, d := range report.Notifications {
		loc := d.View.ImpactLocation
		fmt.Fprintf(w, "✗ %s %s (impact %s)\n", loc.Type, loc.Name, d.TopImpactID)
		fmt.Fprintf(w, "  path: %s\n", strings.Join(d.Path, " <- "))
		if opts.Verbose {
			fmt.Fprintf(w, "  fingerprint: %s\n", d.Fingerprint)
		}
	}
	fmt.Fprintf(w, "\n%d task notification(s) for %s\n", len(report.Notifications), report.RuleID)
	return nil
}

// propagateFailure maps a Receive error to output and exit code.
func propagateFailure(f *OutputFormatter, err error) error {
	switch {
	case errors.Is(err, alert.ErrInvalidAlert):
		return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	case errors.Is(err, alert.ErrUnknownRule), errors.Is(err, store.ErrNotFound):
		return f.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
	}
	if code, ok := engine.CodeOf(err); ok {
		return f.Fail(ExitFailure, ErrCodeCalculation, err.Error(), map[string]string{"propagation_code": string(code)})
	}
	return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
}
