package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/repo"
	"github.com/pkordes/cyclelog/internal/service"
)

// mockLogRepo is a hand-written test double for repo.LogRepo.
// Each method is a function field; set only the ones your test needs.
// A nil field panics when called, which is how tests assert that
// validation failures never reach the network.
type mockLogRepo struct {
	list         func(ctx context.Context, r domain.Range) ([]domain.LogEntry, error)
	create       func(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error)
	update       func(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error)
	delete       func(ctx context.Context, id string) error
	cycleLengths func(ctx context.Context) ([]domain.CycleLength, error)
}

func (m *mockLogRepo) List(ctx context.Context, r domain.Range) ([]domain.LogEntry, error) {
	return m.list(ctx, r)
}
func (m *mockLogRepo) Create(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error) {
	return m.create(ctx, e)
}
func (m *mockLogRepo) Update(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error) {
	return m.update(ctx, e)
}
func (m *mockLogRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}
func (m *mockLogRepo) CycleLengths(ctx context.Context) ([]domain.CycleLength, error) {
	return m.cycleLengths(ctx)
}

// compile-time check: mockLogRepo must satisfy repo.LogRepo.
var _ repo.LogRepo = (*mockLogRepo)(nil)

// ---- helpers ---------------------------------------------------------------

func validEntry() domain.LogEntry {
	return domain.LogEntry{
		Type:  domain.LogPeriod,
		Start: domain.MustParseDate("2024-01-05"),
		End:   domain.MustParseDate("2024-01-07"),
	}
}

func echoRepo() *mockLogRepo {
	return &mockLogRepo{
		create: func(_ context.Context, e domain.LogEntry) (domain.LogEntry, error) {
			e.ID = "new-id"
			return e, nil
		},
		update: func(_ context.Context, e domain.LogEntry) (domain.LogEntry, error) { return e, nil },
		delete: func(_ context.Context, _ string) error { return nil },
	}
}

// ---- Create tests ----------------------------------------------------------

func TestLogService_Create_Valid(t *testing.T) {
	svc := service.NewLogService(echoRepo(), repo.FlavorLogs)

	got, err := svc.Create(context.Background(), validEntry())

	require.NoError(t, err)
	assert.Equal(t, "new-id", got.ID)
}

func TestLogService_Create_TreatmentWithoutName(t *testing.T) {
	// No create func: reaching the repo would panic.
	svc := service.NewLogService(&mockLogRepo{}, repo.FlavorLogs)

	e := validEntry()
	e.Type = domain.LogTreatment
	e.TreatmentName = "   "

	_, err := svc.Create(context.Background(), e)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "treatment name is required")
}

func TestLogService_Create_MissingType(t *testing.T) {
	svc := service.NewLogService(&mockLogRepo{}, repo.FlavorLogs)

	e := validEntry()
	e.Type = ""

	_, err := svc.Create(context.Background(), e)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "type is required")
}

func TestLogService_Create_EndBeforeStart(t *testing.T) {
	svc := service.NewLogService(&mockLogRepo{}, repo.FlavorLogs)

	e := validEntry()
	e.End = e.Start.AddDays(-1)

	_, err := svc.Create(context.Background(), e)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogService_Create_SameDayAllowed(t *testing.T) {
	svc := service.NewLogService(echoRepo(), repo.FlavorLogs)

	e := validEntry()
	e.End = e.Start

	_, err := svc.Create(context.Background(), e)

	assert.NoError(t, err)
}

func TestLogService_Create_TreatmentRejectedByEventsFlavor(t *testing.T) {
	svc := service.NewLogService(&mockLogRepo{}, repo.FlavorEvents)

	e := validEntry()
	e.Type = domain.LogTreatment
	e.TreatmentName = "Metformin"

	_, err := svc.Create(context.Background(), e)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogService_Create_ClearsTreatmentNameForOtherTypes(t *testing.T) {
	var sent domain.LogEntry
	r := &mockLogRepo{create: func(_ context.Context, e domain.LogEntry) (domain.LogEntry, error) {
		sent = e
		return e, nil
	}}
	svc := service.NewLogService(r, repo.FlavorLogs)

	e := validEntry()
	e.TreatmentName = "Metformin"
	e.Description = "  cramps  "

	_, err := svc.Create(context.Background(), e)

	require.NoError(t, err)
	assert.Empty(t, sent.TreatmentName)
	assert.Equal(t, "cramps", sent.Description)
}

func TestLogService_Create_RepoError(t *testing.T) {
	r := &mockLogRepo{create: func(_ context.Context, _ domain.LogEntry) (domain.LogEntry, error) {
		return domain.LogEntry{}, &domain.RemoteError{Status: 500, Message: "boom"}
	}}
	svc := service.NewLogService(r, repo.FlavorLogs)

	_, err := svc.Create(context.Background(), validEntry())

	assert.ErrorIs(t, err, domain.ErrRejected)
}

// ---- Update / Delete tests -------------------------------------------------

func TestLogService_Update_RequiresID(t *testing.T) {
	svc := service.NewLogService(&mockLogRepo{}, repo.FlavorLogs)

	_, err := svc.Update(context.Background(), validEntry())

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogService_Update_NotFound(t *testing.T) {
	r := &mockLogRepo{update: func(_ context.Context, _ domain.LogEntry) (domain.LogEntry, error) {
		return domain.LogEntry{}, &domain.RemoteError{Status: 404}
	}}
	svc := service.NewLogService(r, repo.FlavorLogs)

	e := validEntry()
	e.ID = "missing"
	_, err := svc.Update(context.Background(), e)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogService_Delete(t *testing.T) {
	var deleted string
	r := &mockLogRepo{delete: func(_ context.Context, id string) error {
		deleted = id
		return nil
	}}
	svc := service.NewLogService(r, repo.FlavorLogs)

	require.NoError(t, svc.Delete(context.Background(), "abc"))
	assert.Equal(t, "abc", deleted)
}

func TestLogService_Delete_EmptyID(t *testing.T) {
	svc := service.NewLogService(&mockLogRepo{}, repo.FlavorLogs)

	err := svc.Delete(context.Background(), " ")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogService_List_WrapsError(t *testing.T) {
	r := &mockLogRepo{list: func(_ context.Context, _ domain.Range) ([]domain.LogEntry, error) {
		return nil, errors.Join(domain.ErrNetwork, errors.New("dial tcp"))
	}}
	svc := service.NewLogService(r, repo.FlavorLogs)

	_, err := svc.List(context.Background(), domain.Month{Year: 2024, Month: 1}.Range())

	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestLogService_Validate_DefaultsEndToStart(t *testing.T) {
	svc := service.NewLogService(&mockLogRepo{}, repo.FlavorLogs)

	e := validEntry()
	e.End = domain.Date{}

	got, err := svc.Validate(e)

	require.NoError(t, err)
	assert.Equal(t, e.Start, got.End)
}
