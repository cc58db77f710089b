package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkordes/cyclelog/internal/calendar"
	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/icsexport"
	"github.com/pkordes/cyclelog/internal/termview"
)

// NewRootCommand builds the command tree.
func NewRootCommand(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "cyclelog",
		Short:         "Cycle and fertility log calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(a),
		monthCmd(a),
		showCmd(a),
		addCmd(a),
		editCmd(a),
		moveCmd(a),
		rmCmd(a),
		cycleCmd(a),
		exportCmd(a),
	)
	return root
}

func serveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local calendar service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.Serve == nil {
				return errors.New("serve is not configured")
			}
			return a.Serve(cmd.Context())
		},
	}
}

func monthCmd(a *App) *cobra.Command {
	var treatments, list bool
	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show a month (default: the current one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.monthArg(args)
			if err != nil {
				return err
			}
			vs, err := a.open(cmd.Context(), m, treatments)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, termview.Month(vs.Layout))
			if list {
				fmt.Fprintln(out, termview.Entries(vs.Entries, vs.ShowTreatments))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&treatments, "treatments", "t", false, "show treatment names and descriptions")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "also list entries with their ids")
	return cmd
}

func showCmd(a *App) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.monthFlag(month)
			if err != nil {
				return err
			}
			vs, err := a.open(cmd.Context(), m, false)
			if err != nil {
				return err
			}
			vs, err = a.Calendar.ShowDetail(vs, args[0])
			if err != nil {
				return notInMonth(args[0], m, err)
			}
			e, _ := vs.Detail()
			fmt.Fprintln(cmd.OutOrStdout(), termview.Detail(e))
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month holding the entry, YYYY-MM (default: current)")
	return cmd
}

func addCmd(a *App) *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := calendar.Form{Kind: calendar.CreateForm}
			if err := f.apply(cmd, &form); err != nil {
				return err
			}
			vs := calendar.ViewState{Month: domain.MonthOf(form.Start)}
			vs, err := a.Calendar.Submit(cmd.Context(), vs, form)
			if err != nil {
				return alerted(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), termview.Month(vs.Layout))
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func editCmd(a *App) *cobra.Command {
	var f entryFlags
	var month string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an entry; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.monthFlag(month)
			if err != nil {
				return err
			}
			vs, err := a.open(cmd.Context(), m, false)
			if err != nil {
				return err
			}
			vs, err = a.Calendar.BeginEdit(vs, args[0])
			if err != nil {
				return notInMonth(args[0], m, err)
			}
			form := vs.Form
			if err := f.apply(cmd, &form); err != nil {
				return err
			}
			vs, err = a.Calendar.Submit(cmd.Context(), vs, form)
			if err != nil {
				return alerted(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), termview.Month(vs.Layout))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&month, "month", "", "month holding the entry, YYYY-MM (default: current)")
	return cmd
}

func moveCmd(a *App) *cobra.Command {
	var start, end, month string
	cmd := &cobra.Command{
		Use:   "move ID",
		Short: "Move or resize an entry",
		Long:  "Move or resize an entry. Without --end the entry keeps its length.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := domain.ParseDate(start)
			if err != nil {
				return err
			}
			m := domain.MonthOf(from)
			if month != "" {
				if m, err = domain.ParseMonth(month); err != nil {
					return err
				}
			}
			vs, err := a.open(cmd.Context(), m, false)
			if err != nil {
				return err
			}

			to := from
			if end != "" {
				if to, err = domain.ParseDate(end); err != nil {
					return err
				}
			} else if e, ok := vs.Entry(args[0]); ok {
				to = from.AddDays(e.Span())
			}

			sel := calendar.SelectionOf(domain.Range{Start: from, End: to})
			vs, err = a.Calendar.Move(cmd.Context(), vs, args[0], sel)
			if err != nil {
				return alerted(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), termview.Month(vs.Layout))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "new first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "new last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&month, "month", "", "month holding the entry, YYYY-MM (default: month of --start)")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func rmCmd(a *App) *cobra.Command {
	var yes bool
	var month string
	cmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.monthFlag(month)
			if err != nil {
				return err
			}
			vs, err := a.open(cmd.Context(), m, false)
			if err != nil {
				return err
			}

			confirm := calendar.Preconfirmed(true)
			if !yes {
				confirm = promptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
			}
			_, err = a.Calendar.Delete(cmd.Context(), vs, args[0], confirm)
			switch {
			case errors.Is(err, calendar.ErrDeclined):
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			case err != nil:
				return alerted(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().StringVar(&month, "month", "", "month holding the entry, YYYY-MM (default: current)")
	return cmd
}

func cycleCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Show the average cycle length per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.Cycles.CycleLengths(cmd.Context())
			if err != nil {
				return fmt.Errorf("cycle lengths: %s", calendar.Describe(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), termview.CycleLengths(rows))
			return nil
		},
	}
}

func exportCmd(a *App) *cobra.Command {
	var output string
	var treatments bool
	cmd := &cobra.Command{
		Use:   "export [YYYY-MM]",
		Short: "Write a month as an iCalendar file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.monthArg(args)
			if err != nil {
				return err
			}
			vs, err := a.open(cmd.Context(), m, treatments)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return icsexport.Encode(cmd.OutOrStdout(), vs.Month, vs.Entries, vs.ShowTreatments, a.now())
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			err = icsexport.Encode(f, vs.Month, vs.Entries, vs.ShowTreatments, a.now())
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("cli.export: %w", cerr)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default: stdout)")
	cmd.Flags().BoolVarP(&treatments, "treatments", "t", false, "use treatment names and descriptions as summaries")
	return cmd
}

// open fetches m. Failures were already alerted by the controller.
func (a *App) open(ctx context.Context, m domain.Month, treatments bool) (calendar.ViewState, error) {
	vs, err := a.Calendar.Open(ctx, m)
	if err != nil {
		return vs, alerted(err)
	}
	if treatments {
		vs = a.Calendar.ToggleTreatments(vs)
	}
	return vs, nil
}

func (a *App) monthArg(args []string) (domain.Month, error) {
	if len(args) == 0 {
		return a.monthFlag("")
	}
	return a.monthFlag(args[0])
}

func (a *App) monthFlag(s string) (domain.Month, error) {
	if s == "" {
		return domain.MonthOf(domain.DateOf(a.now())), nil
	}
	return domain.ParseMonth(s)
}

func notInMonth(id string, m domain.Month, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("entry %s is not in %s (use --month)", id, m)
	}
	return err
}

// entryFlags are the form fields shared by add and edit.
type entryFlags struct {
	typ, start, end, desc, treatment string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	names := make([]string, len(domain.LogTypes))
	for i, t := range domain.LogTypes {
		names[i] = string(t)
	}
	cmd.Flags().StringVar(&f.typ, "type", "", "log type: "+strings.Join(names, ", "))
	cmd.Flags().StringVar(&f.start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.end, "end", "", "last day, YYYY-MM-DD (default: --start)")
	cmd.Flags().StringVar(&f.desc, "desc", "", "description")
	cmd.Flags().StringVar(&f.treatment, "treatment", "", "treatment name, for Treatment entries")

	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("treatment", completeTreatments)
}

// apply copies the flags the user set onto form.
func (f *entryFlags) apply(cmd *cobra.Command, form *calendar.Form) error {
	changed := cmd.Flags().Changed
	if changed("type") {
		t, err := domain.ParseLogType(f.typ)
		if err != nil {
			return err
		}
		form.Type = t
	}
	if changed("start") {
		d, err := domain.ParseDate(f.start)
		if err != nil {
			return err
		}
		form.Start = d
		if !changed("end") && form.Kind == calendar.CreateForm {
			form.End = d
		}
	}
	if changed("end") {
		d, err := domain.ParseDate(f.end)
		if err != nil {
			return err
		}
		form.End = d
	}
	if changed("desc") {
		form.Description = f.desc
	}
	if changed("treatment") {
		form.TreatmentName = f.treatment
	}
	return nil
}

func completeTreatments(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := strings.ToLower(toComplete)
	var out []string
	for _, t := range domain.Treatments {
		if strings.HasPrefix(strings.ToLower(t), prefix) {
			out = append(out, t)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
