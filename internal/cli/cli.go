// Package cli is the terminal front-end: a cobra command tree over the
// calendar controller, printing months and tables with termview.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/cyclelog/internal/calendar"
	"github.com/pkordes/cyclelog/internal/domain"
)

// Calendar is the part of calendar.Controller the commands drive.
type Calendar interface {
	Open(ctx context.Context, month domain.Month) (calendar.ViewState, error)
	ToggleTreatments(vs calendar.ViewState) calendar.ViewState
	BeginEdit(vs calendar.ViewState, id string) (calendar.ViewState, error)
	ShowDetail(vs calendar.ViewState, id string) (calendar.ViewState, error)
	Submit(ctx context.Context, vs calendar.ViewState, form calendar.Form) (calendar.ViewState, error)
	Move(ctx context.Context, vs calendar.ViewState, id string, sel calendar.Selection) (calendar.ViewState, error)
	Delete(ctx context.Context, vs calendar.ViewState, id string, confirm calendar.Confirmer) (calendar.ViewState, error)
}

// CycleServicer computes the cycle-length statistic.
type CycleServicer interface {
	CycleLengths(ctx context.Context) ([]domain.CycleLength, error)
}

// App holds what the commands run against.
type App struct {
	Calendar Calendar
	Cycles   CycleServicer
	// Serve runs the local calendar service until ctx is done.
	Serve func(ctx context.Context) error
	Now   func() time.Time
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// alertedError marks an error the controller has already shown through the
// alerter, so Execute does not print it twice.
type alertedError struct{ err error }

func (e alertedError) Error() string { return e.err.Error() }
func (e alertedError) Unwrap() error { return e.err }

func alerted(err error) error {
	if err == nil {
		return nil
	}
	return alertedError{err: err}
}

// Alerter prints controller alerts to w, one per line.
func Alerter(w io.Writer) calendar.Alerter {
	return calendar.AlertFunc(func(_ context.Context, msg string) {
		fmt.Fprintln(w, msg)
	})
}

// promptConfirmer asks on out and reads a y/yes answer from in.
func promptConfirmer(in io.Reader, out io.Writer) calendar.Confirmer {
	return calendar.ConfirmFunc(func(_ context.Context, prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}

// Execute runs root and reports errors the alerter has not already shown.
// It returns the process exit code.
func Execute(ctx context.Context, root *cobra.Command) int {
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var shown alertedError
	if !errors.As(err, &shown) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return 1
}
