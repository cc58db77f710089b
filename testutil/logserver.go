// Package testutil provides shared helpers for tests.
// NewLogServer starts an in-memory fake of the upstream log API so repo,
// service, calendar and handler tests can run without a real backend.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// StoredEntry is an entry as the fake upstream holds it: raw wire strings,
// end_date exclusive.
type StoredEntry struct {
	ID            string
	Type          string
	Description   string
	TreatmentName string
	StartDate     string
	EndDate       string
}

// RecordedRequest is one request the fake upstream received.
type RecordedRequest struct {
	Method    string
	Path      string
	Query     string
	RequestID string
	Body      string
}

// CycleLength mirrors one row of the cycle-length statistic.
type CycleLength struct {
	Month          string `json:"month"`
	AvgCycleLength int    `json:"avg_cycle_length"`
}

// LogServer is a fake upstream API speaking either the "logs" or the
// "events" flavor.
type LogServer struct {
	*httptest.Server
	flavor string

	mu       sync.Mutex
	order    []string
	entries  map[string]StoredEntry
	nextID   int
	failures map[string][]int
	requests []RecordedRequest
	cycle    []CycleLength
}

// NewLogServer starts a fake upstream for flavor ("logs" or "events").
// The server is closed automatically when the test finishes.
func NewLogServer(t *testing.T, flavor string) *LogServer {
	t.Helper()

	s := &LogServer{
		flavor:   flavor,
		entries:  make(map[string]StoredEntry),
		failures: make(map[string][]int),
	}

	r := chi.NewRouter()
	r.Use(s.record, s.injectFailures)
	if flavor == "events" {
		r.Get("/events/", s.list)
		r.Post("/events/", s.create)
		r.Get("/events/cycle-length", s.cycleLength)
		r.Put("/events/{id}", s.update)
		r.Delete("/events/{id}", s.delete)
	} else {
		r.Get("/logs", s.list)
		r.Get("/logs/data", s.list)
		r.Post("/logs", s.create)
		r.Put("/logs/{id}", s.update)
		r.Delete("/logs/{id}", s.delete)
	}

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Seed stores e and returns its id (generated when e.ID is empty).
func (s *LogServer) Seed(e StoredEntry) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(e)
}

// Entry returns the stored entry with id.
func (s *LogServer) Entry(id string) (StoredEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

// Len returns the number of stored entries.
func (s *LogServer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// FailNext makes the next request with method answer status with an error body.
// Calls queue up in order.
func (s *LogServer) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], status)
}

// SetCycleLengths sets the statistic served by the events flavor. A nil
// slice makes the server answer with the "not enough periods" shape.
func (s *LogServer) SetCycleLengths(c []CycleLength) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycle = c
}

// Requests returns a copy of every request received so far.
func (s *LogServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Count returns how many requests with method were received.
func (s *LogServer) Count(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func (s *LogServer) put(e StoredEntry) string {
	if e.ID == "" {
		if s.flavor == "events" {
			s.nextID++
			e.ID = strconv.Itoa(s.nextID)
		} else {
			e.ID = uuid.NewString()
		}
	}
	if _, exists := s.entries[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.entries[e.ID] = e
	return e.ID
}

func (s *LogServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			RequestID: r.Header.Get("X-Request-ID"),
			Body:      string(body),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *LogServer) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		queue := s.failures[r.Method]
		status := 0
		if len(queue) > 0 {
			status, s.failures[r.Method] = queue[0], queue[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			s.fail(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type payload struct {
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	TreatmentName *string `json:"treatment_name"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
}

func (s *LogServer) list(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, 0, len(s.order))
	for _, id := range s.order {
		e, ok := s.entries[id]
		if !ok {
			continue
		}
		if s.flavor == "events" {
			n, _ := strconv.Atoi(e.ID)
			out = append(out, map[string]any{
				"id":          n,
				"type":        e.Type,
				"description": e.Description,
				"start":       e.StartDate,
				"end":         e.EndDate,
			})
			continue
		}
		out = append(out, map[string]any{
			"id":     e.ID,
			"title":  e.Type,
			"start":  e.StartDate,
			"end":    e.EndDate,
			"allDay": true,
			"extendedProps": map[string]any{
				"type":           e.Type,
				"description":    e.Description,
				"treatment_name": e.TreatmentName,
			},
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *LogServer) create(w http.ResponseWriter, r *http.Request) {
	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Type == "" || p.StartDate == "" || p.EndDate == "" {
		s.fail(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	e := StoredEntry{Type: p.Type, Description: p.Description, StartDate: p.StartDate, EndDate: p.EndDate}
	if p.TreatmentName != nil {
		e.TreatmentName = *p.TreatmentName
	}

	s.mu.Lock()
	id := s.put(e)
	s.mu.Unlock()

	if s.flavor == "events" {
		n, _ := strconv.Atoi(id)
		writeJSON(w, http.StatusCreated, map[string]any{
			"id": n, "type": e.Type, "description": e.Description, "start": e.StartDate, "end": e.EndDate,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (s *LogServer) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.fail(w, http.StatusBadRequest, "Invalid body")
		return
	}

	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		e.Type = p.Type
		e.Description = p.Description
		e.StartDate = p.StartDate
		e.EndDate = p.EndDate
		if p.TreatmentName != nil {
			e.TreatmentName = *p.TreatmentName
		}
		s.entries[id] = e
	}
	s.mu.Unlock()

	if !ok {
		s.fail(w, http.StatusNotFound, "Log not found")
		return
	}
	if s.flavor == "events" {
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "type": e.Type})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *LogServer) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if !ok {
		s.fail(w, http.StatusNotFound, "Log not found")
		return
	}
	if s.flavor == "events" {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Event deleted successfully", "deleted_event_id": id})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *LogServer) cycleLength(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	cycle := s.cycle
	s.mu.Unlock()

	if cycle == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Not enough period events to calculate cycle length",
			"data":    []CycleLength{},
		})
		return
	}
	writeJSON(w, http.StatusOK, cycle)
}

// fail writes an error body in the flavor's envelope.
func (s *LogServer) fail(w http.ResponseWriter, status int, msg string) {
	if s.flavor == "events" {
		writeJSON(w, status, map[string]any{"error": msg})
		return
	}
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
