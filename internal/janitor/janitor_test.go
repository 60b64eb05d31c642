package janitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vagkalosynakis/attributes/internal/metrics"
)

type fakeCleaner struct {
	n     int64
	err   error
	calls atomic.Int32
}

func (f *fakeCleaner) Cleanup(context.Context) (int64, error) {
	f.calls.Add(1)
	return f.n, f.err
}

func TestRunOnce(t *testing.T) {
	log, hook := test.NewNullLogger()
	m := metrics.New()

	limits := &fakeCleaner{n: 3}
	broken := &fakeCleaner{err: errors.New("no such table")}
	cache := &fakeCleaner{n: 0}

	j, err := New("@every 1h", logrus.NewEntry(log), m,
		Target{Name: "rate_limits", Cleaner: limits},
		Target{Name: "broken", Cleaner: broken},
		Target{Name: "cache_responses", Cleaner: cache},
	)
	require.NoError(t, err)

	purged := j.RunOnce(context.Background())
	assert.Equal(t, map[string]int64{"rate_limits": 3, "cache_responses": 0}, purged)
	assert.EqualValues(t, 1, cache.calls.Load())

	var errorsLogged int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			errorsLogged++
			assert.Equal(t, "broken", e.Data["target"])
		}
	}
	assert.Equal(t, 1, errorsLogged)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `attributes_janitor_purged_rows_total{table="rate_limits"} 3`)
}

func TestNewRejectsBadSchedule(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := New("every now and then", logrus.NewEntry(log), nil)
	assert.Error(t, err)
}

func TestScheduleRuns(t *testing.T) {
	log, _ := test.NewNullLogger()
	c := &fakeCleaner{}

	j, err := New("@every 1s", logrus.NewEntry(log), nil, Target{Name: "rate_limits", Cleaner: c})
	require.NoError(t, err)

	j.Start()
	assert.Eventually(t, func() bool { return c.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.Stop(ctx)
}
