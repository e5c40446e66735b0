package measure

import (
	"sync"
	"time"
)

type DefaultMetric struct {
	mu               *sync.Mutex
	EndDuration      time.Duration
	stepElapsed      time.Duration
	reconcileElapsed time.Duration
	total            int64
	lastSelected     int
}

func (mt *DefaultMetric) AddDuration(computation, reconcile time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.stepElapsed += computation
	mt.reconcileElapsed += reconcile
}

func (mt *DefaultMetric) AddSelected(selected int) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.lastSelected = selected
}

func (mt *DefaultMetric) SetTotalDuration(endDuration time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.EndDuration = endDuration
}

func (mt *DefaultMetric) GetTotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.EndDuration
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return average(mt.stepElapsed, mt.total)
}

func (mt *DefaultMetric) AVGReconcileDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return average(mt.reconcileElapsed, mt.total)
}

func (mt *DefaultMetric) Runs() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

// LastSelected returns the size of the selection after the last run.
func (mt *DefaultMetric) LastSelected() int {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.lastSelected
}

var _ Metric = (*DefaultMetric)(nil)

func average(elapsed time.Duration, total int64) time.Duration {
	if total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(elapsed) / float64(total)))
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
