package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/layout"
	"github.com/pkordes/cyclelog/internal/repo"
)

// Store is what the controller needs from the service layer.
// *service.LogService satisfies it.
type Store interface {
	List(ctx context.Context, r domain.Range) ([]domain.LogEntry, error)
	Create(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error)
	Update(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error)
	Delete(ctx context.Context, id string) error
	Validate(e domain.LogEntry) (domain.LogEntry, error)
}

// Alerter shows a blocking failure message to the user.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(ctx context.Context, message string)

func (f AlertFunc) Alert(ctx context.Context, message string) { f(ctx, message) }

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Preconfirmed answers every prompt with ok. Front-ends that collect the
// confirmation up front (a --yes flag, a confirm=true query) pass this.
func Preconfirmed(ok bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return ok })
}

// Controller runs the view's gestures against a Store.
type Controller struct {
	store     Store
	alerter   Alerter
	observer  func(ViewState)
	logger    *slog.Logger
	weekStart time.Weekday
	newID     func() string
}

// Option configures a Controller.
type Option func(*Controller)

// WithAlerter sets where failure messages go. The default drops them; the
// message is still recorded in ViewState.Alert.
func WithAlerter(a Alerter) Option {
	return func(c *Controller) { c.alerter = a }
}

// WithObserver registers fn to receive every intermediate and final state,
// including the Submitting state and the optimistic grid of a move.
func WithObserver(fn func(ViewState)) Option {
	return func(c *Controller) { c.observer = fn }
}

// WithLogger sets the logger used for failed gestures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithWeekStart sets the first column of the month grid.
func WithWeekStart(d time.Weekday) Option {
	return func(c *Controller) { c.weekStart = d }
}

// New constructs a Controller backed by store.
func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		alerter: AlertFunc(func(context.Context, string) {}),
		logger:  slog.Default(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open fetches month and returns its view.
func (c *Controller) Open(ctx context.Context, month domain.Month) (ViewState, error) {
	return c.Refresh(ctx, ViewState{Month: month})
}

// Refresh re-fetches the visible month. On failure the previous entries stay.
func (c *Controller) Refresh(ctx context.Context, vs ViewState) (ViewState, error) {
	ctx, vs = c.gesture(ctx, vs)
	vs, err := c.fetch(ctx, vs)
	if err != nil {
		return c.fail(ctx, vs, "load logs", err)
	}
	return c.done(vs, nil)
}

// Navigate moves delta months away and fetches the new month. Any open form
// or detail panel is closed.
func (c *Controller) Navigate(ctx context.Context, vs ViewState, delta int) (ViewState, error) {
	vs.Month = vs.Month.Add(delta)
	vs.Mode = Idle
	vs.Form = Form{}
	vs.DetailID = ""
	vs.Entries = nil
	vs = c.relayout(vs)
	return c.Refresh(ctx, vs)
}

// ToggleTreatments flips between concise and detailed labels. No fetch.
func (c *Controller) ToggleTreatments(vs ViewState) ViewState {
	vs.ShowTreatments = !vs.ShowTreatments
	vs = c.relayout(vs)
	c.emit(vs)
	return vs
}

// BeginCreate opens the create form for a widget selection (exclusive end).
func (c *Controller) BeginCreate(vs ViewState, sel Selection) ViewState {
	r := sel.Inclusive()
	vs.Mode = FormOpen
	vs.Form = Form{Kind: CreateForm, Type: domain.LogPeriod, Start: r.Start, End: r.End}
	vs.DetailID = ""
	c.emit(vs)
	return vs
}

// BeginCreateOn opens the create form for a single clicked day.
func (c *Controller) BeginCreateOn(vs ViewState, day domain.Date) ViewState {
	return c.BeginCreate(vs, Selection{Start: day, End: day.AddDays(1)})
}

// BeginEdit opens the edit form pre-filled from the cached entry.
func (c *Controller) BeginEdit(vs ViewState, id string) (ViewState, error) {
	e, ok := vs.Entry(id)
	if !ok {
		return vs, fmt.Errorf("calendar.BeginEdit: entry %q: %w", id, domain.ErrNotFound)
	}
	vs.Mode = FormOpen
	vs.Form = Form{
		Kind:          EditForm,
		ID:            e.ID,
		Type:          e.Type,
		Description:   e.Description,
		TreatmentName: e.TreatmentName,
		Start:         e.Start,
		End:           e.End,
	}
	vs.DetailID = ""
	c.emit(vs)
	return vs, nil
}

// ShowDetail opens the detail panel for a cached entry.
func (c *Controller) ShowDetail(vs ViewState, id string) (ViewState, error) {
	if _, ok := vs.Entry(id); !ok {
		return vs, fmt.Errorf("calendar.ShowDetail: entry %q: %w", id, domain.ErrNotFound)
	}
	vs.DetailID = id
	c.emit(vs)
	return vs, nil
}

func (c *Controller) CloseDetail(vs ViewState) ViewState {
	vs.DetailID = ""
	c.emit(vs)
	return vs
}

// Cancel closes the form without sending anything.
func (c *Controller) Cancel(vs ViewState) ViewState {
	vs.Mode = Idle
	vs.Form = Form{}
	c.emit(vs)
	return vs
}

// Submit validates form and sends it as a create or full update. A failure
// of any kind leaves the form open with the error; a success closes it and
// re-fetches the month.
func (c *Controller) Submit(ctx context.Context, vs ViewState, form Form) (ViewState, error) {
	ctx, vs = c.gesture(ctx, vs)
	vs.Mode = FormOpen
	vs.Form = form
	vs.Form.Error = ""

	e, err := c.store.Validate(form.Entry())
	if err != nil {
		return c.failForm(ctx, vs, err)
	}

	vs.Mode = Submitting
	c.emit(vs)

	if form.Kind == EditForm {
		_, err = c.store.Update(ctx, e)
	} else {
		e.ID = ""
		_, err = c.store.Create(ctx, e)
	}
	if err != nil {
		vs.Mode = FormOpen
		return c.failForm(ctx, vs, err)
	}

	vs.Mode = Idle
	vs.Form = Form{}
	vs, err = c.fetch(ctx, vs)
	if err != nil {
		return c.fail(ctx, vs, "load logs", err)
	}
	return c.done(vs, nil)
}

// Move applies a drag or resize. sel carries the new bounds in the widget
// convention. The grid updates optimistically; if the update is refused the
// last server-confirmed entries are restored exactly.
func (c *Controller) Move(ctx context.Context, vs ViewState, id string, sel Selection) (ViewState, error) {
	ctx, vs = c.gesture(ctx, vs)

	e, ok := vs.Entry(id)
	if !ok {
		return c.fail(ctx, vs, "update log", fmt.Errorf("calendar.Move: entry %q: %w", id, domain.ErrNotFound))
	}
	r := sel.Inclusive()
	e.Start, e.End = r.Start, r.End

	e, err := c.store.Validate(e)
	if err != nil {
		return c.fail(ctx, vs, "update log", err)
	}

	confirmed := vs.Entries
	optimistic := make([]domain.LogEntry, len(confirmed))
	for i, existing := range confirmed {
		if existing.ID == id {
			existing = e
		}
		optimistic[i] = existing
	}

	prevMode := vs.Mode
	vs.Entries = optimistic
	vs.Mode = Submitting
	vs = c.relayout(vs)
	c.emit(vs)

	if _, err := c.store.Update(ctx, e); err != nil {
		vs.Entries = confirmed
		vs.Mode = prevMode
		vs = c.relayout(vs)
		return c.fail(ctx, vs, "update log", err)
	}

	vs.Mode = prevMode
	vs, err = c.fetch(ctx, vs)
	if err != nil {
		return c.fail(ctx, vs, "load logs", err)
	}
	return c.done(vs, nil)
}

// Delete removes an entry after confirm agrees. Declining sends nothing and
// returns ErrDeclined. A success closes any open form or detail panel.
// The id need not be in the cached month.
func (c *Controller) Delete(ctx context.Context, vs ViewState, id string, confirm Confirmer) (ViewState, error) {
	ctx, vs = c.gesture(ctx, vs)

	prompt := "Delete this log?"
	if e, ok := vs.Entry(id); ok {
		prompt = fmt.Sprintf("Delete %q on %s?", layout.Label(e, true), e.Start)
	}
	if confirm == nil || !confirm.Confirm(ctx, prompt) {
		return c.done(vs, fmt.Errorf("calendar.Delete: %w", ErrDeclined))
	}

	if err := c.store.Delete(ctx, id); err != nil {
		return c.fail(ctx, vs, "delete log", err)
	}

	vs.Mode = Idle
	vs.Form = Form{}
	vs.DetailID = ""
	vs, err := c.fetch(ctx, vs)
	if err != nil {
		return c.fail(ctx, vs, "load logs", err)
	}
	return c.done(vs, nil)
}

// gesture tags ctx and vs with a fresh request id and clears the last alert.
func (c *Controller) gesture(ctx context.Context, vs ViewState) (context.Context, ViewState) {
	id := c.newID()
	vs.RequestID = id
	vs.Alert = ""
	return repo.WithRequestID(ctx, id), vs
}

func (c *Controller) fetch(ctx context.Context, vs ViewState) (ViewState, error) {
	entries, err := c.store.List(ctx, vs.Month.Range())
	if err != nil {
		return vs, err
	}
	vs.Entries = entries
	if _, ok := vs.Entry(vs.DetailID); !ok {
		vs.DetailID = ""
	}
	return c.relayout(vs), nil
}

func (c *Controller) relayout(vs ViewState) ViewState {
	vs.Layout = layout.Build(vs.Month, vs.Entries, layout.Options{
		WeekStart:      c.weekStart,
		ShowTreatments: vs.ShowTreatments,
	})
	return vs
}

func (c *Controller) failForm(ctx context.Context, vs ViewState, err error) (ViewState, error) {
	vs.Form.Error = Describe(err)
	return c.fail(ctx, vs, "save log", err)
}

func (c *Controller) fail(ctx context.Context, vs ViewState, action string, err error) (ViewState, error) {
	vs.Alert = fmt.Sprintf("Failed to %s: %s", action, Describe(err))
	c.logger.WarnContext(ctx, "calendar gesture failed",
		"action", action, "month", vs.Month.String(), "request_id", vs.RequestID, "error", err)
	c.alerter.Alert(ctx, vs.Alert)
	return c.done(vs, err)
}

func (c *Controller) done(vs ViewState, err error) (ViewState, error) {
	c.emit(vs)
	return vs, err
}

func (c *Controller) emit(vs ViewState) {
	if c.observer != nil {
		c.observer(vs)
	}
}

// Describe turns an error into a message fit for an alert.
func Describe(err error) string {
	var remote *domain.RemoteError
	switch {
	case errors.As(err, &remote):
		return remote.Error()
	case errors.Is(err, domain.ErrNetwork):
		return "could not reach the server"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		msg := err.Error()
		for _, sentinel := range []error{domain.ErrValidation, domain.ErrNotFound} {
			if i := strings.Index(msg, sentinel.Error()); i >= 0 {
				return msg[i:]
			}
		}
		return msg
	default:
		return err.Error()
	}
}
