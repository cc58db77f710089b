// Package repo contains all access to the upstream log API.
// LogRepo is the interface the service layer depends on; the HTTP
// implementation speaks either API flavor and maps wire shapes to domain types.
// No business rules live here, only transport and type mapping.
package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkordes/cyclelog/internal/domain"
)

// Flavor selects which upstream API dialect the client speaks.
type Flavor string

const (
	// FlavorLogs is the treatment-aware API under /logs.
	FlavorLogs Flavor = "logs"
	// FlavorEvents is the plain API under /events/.
	FlavorEvents Flavor = "events"
)

// ParseFlavor accepts "logs" or "events" in any case.
func ParseFlavor(s string) (Flavor, error) {
	switch f := Flavor(strings.ToLower(strings.TrimSpace(s))); f {
	case FlavorLogs, FlavorEvents:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown API flavor %q (want logs or events)", domain.ErrValidation, s)
}

// SupportsTreatments reports whether the flavor stores treatment names.
func (f Flavor) SupportsTreatments() bool {
	return f == FlavorLogs
}

func (f Flavor) collectionPath() string {
	if f == FlavorEvents {
		return "/events/"
	}
	return "/logs"
}

func (f Flavor) itemPath(id string) string {
	if f == FlavorEvents {
		return "/events/" + url.PathEscape(id)
	}
	return "/logs/" + url.PathEscape(id)
}

// doer is the minimal interface satisfied by *http.Client. Tests may pass any
// implementation; production code passes a client configured with the
// request timeout.
type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// LogRepo defines the upstream operations on log entries.
// The service layer depends on this interface, not the HTTP implementation.
type LogRepo interface {
	// List returns the entries overlapping r (both ends inclusive).
	List(ctx context.Context, r domain.Range) ([]domain.LogEntry, error)

	// Create sends a new entry and returns it with the upstream ID when the
	// response carries one.
	Create(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error)

	// Update sends the full entry. Returns domain.ErrNotFound if the ID is unknown upstream.
	Update(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error)

	// Delete removes an entry by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// CycleLengths returns the per-month cycle-length statistic.
	// Returns domain.ErrNotSupported when the flavor has no endpoint for it.
	CycleLengths(ctx context.Context) ([]domain.CycleLength, error)
}

// httpLogRepo is the HTTP implementation of LogRepo.
type httpLogRepo struct {
	client   doer
	baseURL  string
	flavor   Flavor
	listPath string
}

// Option customises the HTTP LogRepo.
type Option func(*httpLogRepo)

// WithListPath overrides the path List reads from, e.g. "/logs/data" for
// deployments that serve JSON there. An empty path keeps the flavor's default.
func WithListPath(path string) Option {
	return func(r *httpLogRepo) {
		if path != "" {
			r.listPath = "/" + strings.TrimLeft(path, "/")
		}
	}
}

// NewLogRepo constructs a LogRepo that talks to the API rooted at baseURL.
// In production pass an *http.Client; in tests the client of an httptest server.
func NewLogRepo(client doer, baseURL string, flavor Flavor, opts ...Option) LogRepo {
	r := &httpLogRepo{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		flavor:   flavor,
		listPath: flavor.collectionPath(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List fetches the range using the exclusive-end query convention and keeps
// only entries that actually overlap it.
func (r *httpLogRepo) List(ctx context.Context, rng domain.Range) ([]domain.LogEntry, error) {
	q := url.Values{}
	q.Set("start", rng.Start.String())
	q.Set("end", rng.End.AddDays(1).String())

	body, err := r.do(ctx, http.MethodGet, r.listPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("repo.LogRepo.List: %w", err)
	}

	wires, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("repo.LogRepo.List: decode: %w", err)
	}

	entries := make([]domain.LogEntry, 0, len(wires))
	for _, w := range wires {
		e, err := w.toEntry()
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed upstream entry", "id", decodeID(w.ID), "error", err)
			continue
		}
		if e.Range().Overlaps(rng) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Create posts the entry to the collection.
func (r *httpLogRepo) Create(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error) {
	body, err := r.do(ctx, http.MethodPost, r.flavor.collectionPath(), toPayload(r.flavor, e))
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("repo.LogRepo.Create: %w", err)
	}
	if id := resultID(body); id != "" {
		e.ID = id
	}
	return e, nil
}

// Update puts the full entry to its item path.
func (r *httpLogRepo) Update(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error) {
	if _, err := r.do(ctx, http.MethodPut, r.flavor.itemPath(e.ID), toPayload(r.flavor, e)); err != nil {
		return domain.LogEntry{}, fmt.Errorf("repo.LogRepo.Update: %w", err)
	}
	return e, nil
}

// Delete removes the entry at its item path.
func (r *httpLogRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.do(ctx, http.MethodDelete, r.flavor.itemPath(id), nil); err != nil {
		return fmt.Errorf("repo.LogRepo.Delete: %w", err)
	}
	return nil
}

// CycleLengths reads the statistic from the events API.
func (r *httpLogRepo) CycleLengths(ctx context.Context) ([]domain.CycleLength, error) {
	if r.flavor != FlavorEvents {
		return nil, fmt.Errorf("repo.LogRepo.CycleLengths: %w: the %s API has no cycle-length endpoint", domain.ErrNotSupported, r.flavor)
	}

	body, err := r.do(ctx, http.MethodGet, "/events/cycle-length", nil)
	if err != nil {
		return nil, fmt.Errorf("repo.LogRepo.CycleLengths: %w", err)
	}

	out, err := decodeCycleLengths(body)
	if err != nil {
		return nil, fmt.Errorf("repo.LogRepo.CycleLengths: decode: %w", err)
	}
	return out, nil
}

// do sends one request and returns the response body of a successful call.
// Transport failures wrap domain.ErrNetwork; non-2xx statuses and
// {"success": false} bodies come back as *domain.RemoteError.
func (r *httpLogRepo) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := RequestIDFrom(ctx)
	if reqID != "" {
		req.Header.Set(RequestIDHeader, reqID)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		slog.DebugContext(ctx, "upstream request failed",
			"method", method, "path", path, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrNetwork, err)
	}

	slog.DebugContext(ctx, "upstream request",
		"method", method, "path", path, "status", resp.StatusCode, "request_id", reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.RemoteError{Status: resp.StatusCode, Message: resultMessage(body, resp.StatusCode)}
	}
	if res, ok := decodeResult(body); ok && res.Success != nil && !*res.Success {
		return nil, &domain.RemoteError{Status: resp.StatusCode, Message: resultMessage(body, resp.StatusCode)}
	}
	return body, nil
}
