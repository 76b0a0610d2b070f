package audit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradeaudit/internal/canvas"
	"gradeaudit/internal/logger"
)

type processorFunc func(ctx context.Context, courseID string, clock Clock) (*CourseReport, error)

func (f processorFunc) Process(ctx context.Context, courseID string, clock Clock) (*CourseReport, error) {
	return f(ctx, courseID, clock)
}

func TestRunKeepsOrderAndIsolatesFailures(t *testing.T) {
	src := newFakeSource()
	src.addCourse("111", student(1, "Ana"))
	src.addCourse("222", student(2, "Bruno"))
	src.assignments["111"] = []canvas.Assignment{{ID: 10, Name: "Essay", DueAt: strPtr("2024-01-01T00:00:00Z")}}
	src.assignments["222"] = []canvas.Assignment{{ID: 20, Name: "Quiz", DueAt: strPtr("2024-01-01T00:00:00Z")}}
	src.submissions[20] = []canvas.Submission{{UserID: 2, GradedAt: strPtr("2024-01-02T00:00:00Z"), Score: canvas.ScoreOf(6)}}

	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	runner := NewRunner(newTestProcessor(src),
		WithNow(func() time.Time { return now }),
		WithLogger(logger.Discard()),
	)

	batch := runner.Run(context.Background(), []string{"111", "bad", "222"})

	require.Len(t, batch.Results, 3)
	summaries := batch.Summaries()
	assert.Equal(t, "111", summaries[0].CourseID)
	assert.Equal(t, RollupNonCompliant, summaries[0].Rollup)
	assert.Equal(t, 1, summaries[0].NonCompliant)
	assert.Equal(t, "Course 111", summaries[0].Name)

	assert.Equal(t, "bad", summaries[1].CourseID)
	assert.Equal(t, RollupNotFound, summaries[1].Rollup)
	assert.NotEmpty(t, summaries[1].Error)
	assert.Nil(t, batch.Results[1].Report)

	assert.Equal(t, "222", summaries[2].CourseID)
	assert.Equal(t, RollupCompliant, summaries[2].Rollup)
	assert.Equal(t, "Diploma in Data", summaries[2].AccountName)

	assert.Equal(t, now, batch.StartedAt)
	assert.GreaterOrEqual(t, batch.Elapsed, time.Duration(0))
}

func TestRunTransportErrorBecomesErrorRow(t *testing.T) {
	src := newFakeSource()
	src.failOn["course:9"] = errors.New("connection reset by peer")

	batch := NewRunner(newTestProcessor(src), WithLogger(logger.Discard())).
		Run(context.Background(), []string{"9"})

	require.Len(t, batch.Results, 1)
	assert.Equal(t, RollupError, batch.Results[0].Summary.Rollup)
	assert.Equal(t, "orange", batch.Results[0].Summary.Color)
	assert.Contains(t, batch.Results[0].Summary.Error, "connection reset")
}

func TestRunProcessesDuplicatesIndependently(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}
	proc := processorFunc(func(_ context.Context, id string, _ Clock) (*CourseReport, error) {
		mu.Lock()
		calls[id]++
		mu.Unlock()
		return &CourseReport{CourseID: id}, nil
	})

	batch := NewRunner(proc, WithLogger(logger.Discard())).
		Run(context.Background(), []string{"1", "1"})

	assert.Len(t, batch.Results, 2)
	assert.Equal(t, 2, calls["1"])
	assert.Equal(t, RollupNotConfigured, batch.Results[0].Summary.Rollup)
}

func TestRunParallelPreservesInputOrder(t *testing.T) {
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}
	proc := processorFunc(func(_ context.Context, id string, _ Clock) (*CourseReport, error) {
		if id == "5" {
			return nil, &NotFoundError{Resource: "course", ID: id}
		}
		// Earlier ids finish later.
		n, _ := strconv.Atoi(id)
		time.Sleep(time.Duration(20-n) * time.Millisecond)
		return &CourseReport{CourseID: id}, nil
	})

	batch := NewRunner(proc, WithWorkers(8), WithLogger(logger.Discard())).
		Run(context.Background(), ids)

	require.Len(t, batch.Results, len(ids))
	for i, r := range batch.Results {
		assert.Equal(t, ids[i], r.Summary.CourseID)
	}
	assert.Equal(t, RollupNotFound, batch.Results[5].Summary.Rollup)
	assert.Equal(t, RollupNotConfigured, batch.Results[6].Summary.Rollup)
}

func TestRunClockPolicies(t *testing.T) {
	var ticks int
	now := func() time.Time {
		ticks++
		return time.Date(2024, 1, 1, 0, 0, ticks, 0, time.UTC)
	}
	var seen []time.Time
	proc := processorFunc(func(_ context.Context, id string, clock Clock) (*CourseReport, error) {
		seen = append(seen, clock(), clock())
		return &CourseReport{CourseID: id}, nil
	})

	NewRunner(proc, WithNow(now), WithLogger(logger.Discard())).Run(context.Background(), []string{"a"})
	require.Len(t, seen, 2)
	assert.Equal(t, seen[0], seen[1], "frozen clock must not move")

	seen, ticks = nil, 0
	NewRunner(proc, WithNow(now), WithNowPolicy(NowPerAssignment), WithLogger(logger.Discard())).Run(context.Background(), []string{"a"})
	require.Len(t, seen, 2)
	assert.True(t, seen[1].After(seen[0]), "per-assignment clock must resample")
}
