package measure

import "time"

type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

type Metric interface {
	AddDuration(computation, reconcile time.Duration)
	AddSelected(selected int)
	AVGDuration() time.Duration
	AVGReconcileDuration() time.Duration
	Runs() int64
	LastSelected() int
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
}
