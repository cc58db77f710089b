// Package service contains the business rules of cyclelog.
// Services validate entries, enforce what the configured API flavor can
// store, and orchestrate repo calls. No HTTP lives here: services depend on
// the repo interface, not its implementation.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/repo"
)

// entryRules carries the struct-tag rules checked by the validator.
type entryRules struct {
	Type          string `validate:"required"`
	TreatmentName string `validate:"required_if=Type Treatment"`
}

// LogService implements the business logic for log entries.
type LogService struct {
	repo     repo.LogRepo
	flavor   repo.Flavor
	validate *validator.Validate
}

// NewLogService constructs a LogService backed by r, enforcing what flavor
// can store.
func NewLogService(r repo.LogRepo, flavor repo.Flavor) *LogService {
	return &LogService{
		repo:     r,
		flavor:   flavor,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Flavor returns the API flavor the service validates against.
func (s *LogService) Flavor() repo.Flavor {
	return s.flavor
}

// Validate checks e and returns it normalized: text trimmed, a missing end
// set to the start, and the treatment name cleared for non-treatment types.
// Failures wrap domain.ErrValidation.
func (s *LogService) Validate(e domain.LogEntry) (domain.LogEntry, error) {
	e.Description = strings.TrimSpace(e.Description)
	e.TreatmentName = strings.TrimSpace(e.TreatmentName)

	if err := s.validate.Struct(entryRules{Type: string(e.Type), TreatmentName: e.TreatmentName}); err != nil {
		return domain.LogEntry{}, validationError(err)
	}
	if !knownType(e.Type) {
		return domain.LogEntry{}, fmt.Errorf("%w: unknown log type %q", domain.ErrValidation, e.Type)
	}
	if e.Type == domain.LogTreatment && !s.flavor.SupportsTreatments() {
		return domain.LogEntry{}, fmt.Errorf("%w: the %s API does not support treatment entries", domain.ErrValidation, s.flavor)
	}
	if e.Type != domain.LogTreatment {
		e.TreatmentName = ""
	}

	if e.Start.IsZero() {
		return domain.LogEntry{}, fmt.Errorf("%w: start date is required", domain.ErrValidation)
	}
	if e.End.IsZero() {
		e.End = e.Start
	}
	if e.End.Before(e.Start) {
		return domain.LogEntry{}, fmt.Errorf("%w: end date %s is before start date %s", domain.ErrValidation, e.End, e.Start)
	}
	return e, nil
}

// List returns the entries overlapping r.
func (s *LogService) List(ctx context.Context, r domain.Range) ([]domain.LogEntry, error) {
	entries, err := s.repo.List(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("service.LogService.List: %w", err)
	}
	return entries, nil
}

// Create validates and sends a new entry.
func (s *LogService) Create(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error) {
	e, err := s.Validate(e)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.LogService.Create: %w", err)
	}
	got, err := s.repo.Create(ctx, e)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.LogService.Create: %w", err)
	}
	return got, nil
}

// Update validates and sends the full entry.
func (s *LogService) Update(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error) {
	if strings.TrimSpace(e.ID) == "" {
		return domain.LogEntry{}, fmt.Errorf("service.LogService.Update: %w: id is required", domain.ErrValidation)
	}
	e, err := s.Validate(e)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.LogService.Update: %w", err)
	}
	got, err := s.repo.Update(ctx, e)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("service.LogService.Update: %w", err)
	}
	return got, nil
}

// Delete removes an entry by ID.
func (s *LogService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("service.LogService.Delete: %w: id is required", domain.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.LogService.Delete: %w", err)
	}
	return nil
}

func knownType(t domain.LogType) bool {
	for _, known := range domain.LogTypes {
		if t == known {
			return true
		}
	}
	return false
}

// validationError turns validator output into a readable ErrValidation.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch {
		case fe.Field() == "Type":
			msgs = append(msgs, "type is required")
		case fe.Field() == "TreatmentName" && fe.Tag() == "required_if":
			msgs = append(msgs, "treatment name is required for treatment entries")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}
