package refresh_test

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/cyclelog/internal/refresh"
)

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) Invalidate() { c.calls.Add(1) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNew_rejectsBadSpec(t *testing.T) {
	_, err := refresh.New("every so often", &countingInvalidator{}, discardLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "every so often")
}

func TestRun_invalidatesTarget(t *testing.T) {
	target := &countingInvalidator{}
	s, err := refresh.New("*/15 * * * *", target, discardLogger())
	require.NoError(t, err)

	s.Run()

	assert.EqualValues(t, 1, target.calls.Load())
}

func TestStartStop(t *testing.T) {
	s, err := refresh.New("@every 1h", &countingInvalidator{}, discardLogger())
	require.NoError(t, err)

	s.Start()
	<-s.Stop().Done()
}
