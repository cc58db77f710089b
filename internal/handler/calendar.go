package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/cyclelog/internal/calendar"
	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/icsexport"
)

// GetMonth handles GET /api/calendar/{year}/{month}.
func (s *Server) GetMonth(w http.ResponseWriter, r *http.Request) {
	vs, err := s.pathView(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	vs, err = s.cal.Refresh(r.Context(), vs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthView(vs))
}

// ExportMonth handles GET /api/calendar/{year}/{month}/export.ics.
func (s *Server) ExportMonth(w http.ResponseWriter, r *http.Request) {
	vs, err := s.pathView(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	vs, err = s.cal.Refresh(r.Context(), vs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := icsexport.Encode(&buf, vs.Month, vs.Entries, vs.ShowTreatments, s.now()); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cyclelog-%s.ics"`, vs.Month))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// CreateEntry handles POST /api/entries.
func (s *Server) CreateEntry(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, calendar.Form{Kind: calendar.CreateForm}, http.StatusCreated)
}

// UpdateEntry handles PUT /api/entries/{id}. It is a full update.
func (s *Server) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, calendar.Form{Kind: calendar.EditForm, ID: chi.URLParam(r, "id")}, http.StatusOK)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, form calendar.Form, status int) {
	var req EntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Type != "" {
		t, err := domain.ParseLogType(req.Type)
		if err != nil {
			writeError(w, r, err)
			return
		}
		form.Type = t
	}
	form.Description = req.Description
	form.TreatmentName = req.TreatmentName
	form.Start = dateOf(req.StartDate)
	form.End = dateOf(req.EndDate)

	vs, err := s.queryView(r, form.Start)
	if err != nil {
		writeError(w, r, err)
		return
	}
	vs, err = s.cal.Submit(r.Context(), vs, form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, toMonthView(vs))
}

// MoveEntry handles PATCH /api/entries/{id}/bounds, a drag or resize in the
// widget. The month is loaded first so the move can be reverted; a refused
// move answers with the error and the reverted month.
func (s *Server) MoveEntry(w http.ResponseWriter, r *http.Request) {
	var req BoundsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sel := calendar.Selection{Start: dateOf(req.StartDate), End: dateOf(req.EndDate)}
	if sel.Start.IsZero() {
		writeError(w, r, fmt.Errorf("%w: start_date is required", domain.ErrValidation))
		return
	}

	vs, err := s.queryView(r, sel.Start)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	vs, err = s.locateEntry(r, vs, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	vs, err = s.cal.Move(r.Context(), vs, id, sel)
	if err != nil {
		status, detail := errorDetail(err)
		writeJSON(w, status, MoveFailure{Error: detail, Month: toMonthView(vs)})
		return
	}
	writeJSON(w, http.StatusOK, toMonthView(vs))
}

// DeleteEntry handles DELETE /api/entries/{id}. Without confirm=true it is
// treated as a declined confirmation and nothing is sent upstream.
func (s *Server) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	var confirm *bool
	if err := runtime.BindQueryParameter("form", true, false, "confirm", r.URL.Query(), &confirm); err != nil {
		writeError(w, r, fmt.Errorf("%w: %s", domain.ErrValidation, err))
		return
	}
	vs, err := s.queryView(r, s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}

	vs, err = s.cal.Delete(r.Context(), vs, chi.URLParam(r, "id"), calendar.Preconfirmed(confirm != nil && *confirm))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthView(vs))
}

// GetCycleLengths handles GET /api/cycle-length.
func (s *Server) GetCycleLengths(w http.ResponseWriter, r *http.Request) {
	rows, err := s.cycles.CycleLengths(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCycleLengths(rows))
}

// pathView reads {year}/{month} and show_treatments into a fresh ViewState.
func (s *Server) pathView(r *http.Request) (calendar.ViewState, error) {
	var year, month int
	if err := bindPath("year", chi.URLParam(r, "year"), &year); err != nil {
		return calendar.ViewState{}, err
	}
	if err := bindPath("month", chi.URLParam(r, "month"), &month); err != nil {
		return calendar.ViewState{}, err
	}
	m, err := monthOf(year, month)
	if err != nil {
		return calendar.ViewState{}, err
	}
	show, err := showTreatments(r)
	if err != nil {
		return calendar.ViewState{}, err
	}
	return calendar.ViewState{Month: m, ShowTreatments: show}, nil
}

// queryView reads the optional ?year=&month= of the visible month. Without
// them the month containing fallback is used.
// locateEntry refreshes vs. When the caller named no month and id is not in
// the new start's month, the neighbouring months are tried, since a drag
// usually crosses at most one month boundary.
func (s *Server) locateEntry(r *http.Request, vs calendar.ViewState, id string) (calendar.ViewState, error) {
	refreshed, err := s.cal.Refresh(r.Context(), vs)
	if err != nil {
		return vs, err
	}
	q := r.URL.Query()
	if _, ok := refreshed.Entry(id); ok || q.Has("year") || q.Has("month") {
		return refreshed, nil
	}
	for _, m := range []domain.Month{vs.Month.Prev(), vs.Month.Next()} {
		alt := vs
		alt.Month = m
		alt, err = s.cal.Refresh(r.Context(), alt)
		if err != nil {
			return refreshed, err
		}
		if _, ok := alt.Entry(id); ok {
			return alt, nil
		}
	}
	return refreshed, nil
}

func (s *Server) queryView(r *http.Request, fallback domain.Date) (calendar.ViewState, error) {
	var year, month *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "year", q, &year); err != nil {
		return calendar.ViewState{}, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "month", q, &month); err != nil {
		return calendar.ViewState{}, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	show, err := showTreatments(r)
	if err != nil {
		return calendar.ViewState{}, err
	}

	vs := calendar.ViewState{Month: domain.MonthOf(fallback), ShowTreatments: show}
	switch {
	case year == nil && month == nil:
		return vs, nil
	case year == nil || month == nil:
		return calendar.ViewState{}, fmt.Errorf("%w: year and month must be given together", domain.ErrValidation)
	}
	vs.Month, err = monthOf(*year, *month)
	return vs, err
}

func showTreatments(r *http.Request) (bool, error) {
	var show *bool
	if err := runtime.BindQueryParameter("form", true, false, "show_treatments", r.URL.Query(), &show); err != nil {
		return false, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	return show != nil && *show, nil
}

func bindPath(name, value string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, value, dest, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	return nil
}

func monthOf(year, month int) (domain.Month, error) {
	if year < 1 {
		return domain.Month{}, fmt.Errorf("%w: year must be positive", domain.ErrValidation)
	}
	if month < 1 || month > 12 {
		return domain.Month{}, fmt.Errorf("%w: month must be between 1 and 12", domain.ErrValidation)
	}
	return domain.Month{Year: year, Month: time.Month(month)}, nil
}
