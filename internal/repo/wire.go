package repo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkordes/cyclelog/internal/domain"
)

// wireEntry is one entry as the upstream API returns it. The two API flavors
// and their list endpoints disagree on field names, so every known spelling
// is accepted: start_date/end_date or start/end, and type/description either
// at the top level or nested under extendedProps.
type wireEntry struct {
	ID            json.RawMessage `json:"id"`
	Type          string          `json:"type"`
	Description   string          `json:"description"`
	TreatmentName string          `json:"treatment_name"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	Start         string          `json:"start"`
	End           string          `json:"end"`
	ExtendedProps *wireProps      `json:"extendedProps"`
}

type wireProps struct {
	Type          string `json:"type"`
	Description   string `json:"description"`
	TreatmentName string `json:"treatment_name"`
}

// wirePayload is the body of create and update requests.
type wirePayload struct {
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	TreatmentName *string `json:"treatment_name,omitempty"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
}

// wireResult covers the envelope shapes returned by mutations and errors.
type wireResult struct {
	Success *bool           `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	ID      json.RawMessage `json:"id"`
}

// toEntry converts a wire entry to the domain form. end_date is exclusive on
// the wire: End is end_date minus one day, or Start when end_date is missing
// or not after start_date.
func (w wireEntry) toEntry() (domain.LogEntry, error) {
	typ, desc, treatment := w.Type, w.Description, w.TreatmentName
	if p := w.ExtendedProps; p != nil {
		typ = firstNonEmpty(typ, p.Type)
		desc = firstNonEmpty(desc, p.Description)
		treatment = firstNonEmpty(treatment, p.TreatmentName)
	}

	t, err := domain.ParseLogType(typ)
	if err != nil {
		return domain.LogEntry{}, err
	}
	start, err := domain.ParseDate(firstNonEmpty(w.StartDate, w.Start))
	if err != nil {
		return domain.LogEntry{}, err
	}

	e := domain.LogEntry{
		ID:          decodeID(w.ID),
		Type:        t,
		Description: desc,
		Start:       start,
		End:         start,
	}
	if t == domain.LogTreatment {
		e.TreatmentName = treatment
	}

	if raw := firstNonEmpty(w.EndDate, w.End); raw != "" {
		end, err := domain.ParseDate(raw)
		if err != nil {
			return domain.LogEntry{}, err
		}
		if end.After(start) {
			e.End = end.AddDays(-1)
		}
	}
	return e, nil
}

// toPayload converts an entry to the request body for flavor, writing the
// exclusive end_date (End + 1 day).
func toPayload(f Flavor, e domain.LogEntry) wirePayload {
	p := wirePayload{
		Type:        wireType(f, e.Type),
		Description: e.Description,
		StartDate:   wireTimestamp(e.Start),
		EndDate:     wireTimestamp(e.End.AddDays(1)),
	}
	if f.SupportsTreatments() {
		name := ""
		if e.Type == domain.LogTreatment {
			name = e.TreatmentName
		}
		p.TreatmentName = &name
	}
	return p
}

// wireTimestamp renders d as midnight UTC, e.g. "2024-01-05T00:00:00Z".
func wireTimestamp(d domain.Date) string {
	return d.Time().Format(time.RFC3339)
}

// wireType returns the type vocabulary of the flavor:
// "Sexual Activity" for logs, "SEXUAL_ACTIVITY" for events.
func wireType(f Flavor, t domain.LogType) string {
	if f == FlavorEvents {
		return strings.ToUpper(strings.ReplaceAll(t.DisplayName(), " ", "_"))
	}
	return t.DisplayName()
}

// decodeList accepts a bare array, {"events": [...]} or {"data": [...]}.
func decodeList(body []byte) ([]wireEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var out []wireEntry
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	var env struct {
		Events []wireEntry `json:"events"`
		Data   []wireEntry `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	if env.Events != nil {
		return env.Events, nil
	}
	return env.Data, nil
}

// decodeCycleLengths accepts the bare array or the {message, data} shape the
// API returns when there are too few periods to compute anything.
func decodeCycleLengths(body []byte) ([]domain.CycleLength, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var out []domain.CycleLength
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	var env struct {
		Data []domain.CycleLength `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []domain.CycleLength{}, nil
	}
	return env.Data, nil
}

func decodeResult(body []byte) (wireResult, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return wireResult{}, false
	}
	var res wireResult
	if err := json.Unmarshal(trimmed, &res); err != nil {
		return wireResult{}, false
	}
	return res, true
}

// resultMessage picks the most specific error text the upstream returned.
func resultMessage(body []byte, status int) string {
	if res, ok := decodeResult(body); ok {
		if msg := firstNonEmpty(res.Error, res.Message); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

func resultID(body []byte) string {
	res, ok := decodeResult(body)
	if !ok {
		return ""
	}
	return decodeID(res.ID)
}

// decodeID accepts string and numeric ids alike.
func decodeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
