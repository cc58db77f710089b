package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pkordes/cyclelog/internal/domain"
	"github.com/pkordes/cyclelog/internal/repo"
)

// allTime is the range fetched when the statistic is computed locally.
var allTime = domain.Range{
	Start: domain.NewDate(1900, time.January, 1),
	End:   domain.NewDate(2999, time.December, 31),
}

// CycleService serves the cycle-length statistic.
type CycleService struct {
	repo repo.LogRepo
}

// NewCycleService constructs a CycleService backed by r.
func NewCycleService(r repo.LogRepo) *CycleService {
	return &CycleService{repo: r}
}

// CycleLengths asks the upstream API first and falls back to computing the
// statistic from Period entries when the flavor has no endpoint for it.
func (s *CycleService) CycleLengths(ctx context.Context) ([]domain.CycleLength, error) {
	out, err := s.repo.CycleLengths(ctx)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, domain.ErrNotSupported) {
		return nil, fmt.Errorf("service.CycleService.CycleLengths: %w", err)
	}

	entries, err := s.repo.List(ctx, allTime)
	if err != nil {
		return nil, fmt.Errorf("service.CycleService.CycleLengths: %w", err)
	}
	return ComputeCycleLengths(entries), nil
}

// ComputeCycleLengths averages the day gaps between consecutive period
// starts, grouped by the month of the later start and ordered Jan..Dec.
// Averages round half to even. Fewer than two periods yield an empty slice.
func ComputeCycleLengths(entries []domain.LogEntry) []domain.CycleLength {
	var periods []domain.LogEntry
	for _, e := range entries {
		if e.Type == domain.LogPeriod {
			periods = append(periods, e)
		}
	}
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})

	var sums, counts [13]int
	for i := 1; i < len(periods); i++ {
		m := periods[i].Start.Month
		sums[m] += periods[i-1].Start.DaysUntil(periods[i].Start)
		counts[m]++
	}

	out := []domain.CycleLength{}
	for m := time.January; m <= time.December; m++ {
		if counts[m] == 0 {
			continue
		}
		avg := math.RoundToEven(float64(sums[m]) / float64(counts[m]))
		out = append(out, domain.CycleLength{Month: m.String()[:3], AvgCycleLength: int(avg)})
	}
	return out
}
