package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionscout/optionscout/internal/metrics"
	"github.com/optionscout/optionscout/pkg/config"
	"github.com/optionscout/optionscout/pkg/logger"
)

type testJob struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

func (j *testJob) Name() string                  { return j.name }
func (j *testJob) Schedule() string              { return j.schedule }
func (j *testJob) Run(ctx context.Context) error { return j.run(ctx) }

func newTestScheduler() *Scheduler {
	log := logger.New(&config.Config{Env: "test", LogLevel: "error"})
	s := New(log, metrics.New())
	s.maxRetries = 0
	s.retryDelay = time.Millisecond
	return s
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := newTestScheduler()

	job := &testJob{name: "sweep", schedule: "@hourly", run: func(ctx context.Context) error { return nil }}
	require.NoError(t, s.AddJob(job))

	err := s.AddJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler()

	job := &testJob{name: "sweep", schedule: "not a cron", run: func(ctx context.Context) error { return nil }}
	require.Error(t, s.AddJob(job))
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := newTestScheduler()

	done := make(chan struct{})
	job := &testJob{name: "sweep", schedule: "@hourly", run: func(ctx context.Context) error {
		defer close(done)
		return nil
	}}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("sweep"))
	<-done

	require.Eventually(t, func() bool {
		history, err := s.GetJobHistory("sweep")
		return err == nil && len(history.Results) == 1
	}, time.Second, 10*time.Millisecond)

	history, err := s.GetJobHistory("sweep")
	require.NoError(t, err)
	assert.True(t, history.Results[0].Success)
	assert.Equal(t, 1.0, history.GetSuccessRate())
}

func TestRunJobUnknown(t *testing.T) {
	s := newTestScheduler()
	require.Error(t, s.RunJob("nope"))
}

func TestRunOnceConvertsPanic(t *testing.T) {
	s := newTestScheduler()

	err := s.runOnce(&testJob{name: "boom", schedule: "@hourly", run: func(ctx context.Context) error {
		panic("kaboom")
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestRunOnceReturnsJobError(t *testing.T) {
	s := newTestScheduler()

	wantErr := errors.New("upstream down")
	err := s.runOnce(&testJob{name: "fail", schedule: "@hourly", run: func(ctx context.Context) error {
		return wantErr
	}})
	assert.ErrorIs(t, err, wantErr)
}

func TestJobHistoryBounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "sweep", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 100)
	assert.Len(t, h.GetLatestResults(10), 10)
	assert.Len(t, h.GetFailedResults(), 50)
}
