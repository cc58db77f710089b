// Package handler implements the local calendar service that a browser
// calendar widget drives. Handlers are methods on Server; each one turns a
// request into a calendar gesture and answers with the resulting month.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/cyclelog/internal/calendar"
	"github.com/pkordes/cyclelog/internal/domain"
)

// Calendar is the part of calendar.Controller the handlers drive.
type Calendar interface {
	Refresh(ctx context.Context, vs calendar.ViewState) (calendar.ViewState, error)
	Submit(ctx context.Context, vs calendar.ViewState, form calendar.Form) (calendar.ViewState, error)
	Move(ctx context.Context, vs calendar.ViewState, id string, sel calendar.Selection) (calendar.ViewState, error)
	Delete(ctx context.Context, vs calendar.ViewState, id string, confirm calendar.Confirmer) (calendar.ViewState, error)
}

// CycleServicer computes the cycle-length statistic.
type CycleServicer interface {
	CycleLengths(ctx context.Context) ([]domain.CycleLength, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	cal    Calendar
	cycles CycleServicer
	now    func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(cal Calendar, cycles CycleServicer) *Server {
	return &Server{cal: cal, cycles: cycles, now: time.Now}
}

// SetClock replaces the clock used for default months and export stamps.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

// Routes returns the router with every endpoint of api/openapi.yaml.
// Middleware is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Get("/calendar/{year}/{month}", s.GetMonth)
		r.Get("/calendar/{year}/{month}/export.ics", s.ExportMonth)
		r.Post("/entries", s.CreateEntry)
		r.Put("/entries/{id}", s.UpdateEntry)
		r.Patch("/entries/{id}/bounds", s.MoveEntry)
		r.Delete("/entries/{id}", s.DeleteEntry)
		r.Get("/cycle-length", s.GetCycleLengths)
	})
	return r
}

func (s *Server) today() domain.Date {
	return domain.DateOf(s.now())
}
