// Package janitor periodically removes expired rate-limit windows and
// cached responses.
package janitor

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/vagkalosynakis/attributes/internal/metrics"
)

// Cleaner deletes expired rows and reports how many went.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// Target is a named Cleaner.
type Target struct {
	Name    string
	Cleaner Cleaner
}

type Janitor struct {
	cron    *cron.Cron
	targets []Target
	log     *logrus.Entry
	metrics *metrics.Metrics
}

// New schedules a sweep of targets. schedule takes the standard five-field
// cron syntax or descriptors such as "@every 5m".
func New(schedule string, log *logrus.Entry, m *metrics.Metrics, targets ...Target) (*Janitor, error) {
	logger := cron.PrintfLogger(log)
	j := &Janitor{
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		targets: targets,
		log:     log,
		metrics: m,
	}

	if _, err := j.cron.AddFunc(schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("janitor: bad schedule %q: %w", schedule, err)
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts the schedule and waits for a running sweep until ctx is done.
func (j *Janitor) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce sweeps every target. A failing target is logged and does not stop
// the others. It returns the rows removed per target.
func (j *Janitor) RunOnce(ctx context.Context) map[string]int64 {
	purged := make(map[string]int64, len(j.targets))
	for _, t := range j.targets {
		n, err := t.Cleaner.Cleanup(ctx)
		if err != nil {
			j.log.WithError(err).WithField("target", t.Name).Error("cleanup failed")
			continue
		}
		purged[t.Name] = n
		if j.metrics != nil {
			j.metrics.Purged(t.Name, n)
		}
		if n > 0 {
			j.log.WithFields(logrus.Fields{"target": t.Name, "rows": n}).Info("expired rows removed")
		}
	}
	return purged
}
