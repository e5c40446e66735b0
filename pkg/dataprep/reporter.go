package dataprep

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// LogReporter is a ProgressReporter writing to a logger. Cancel makes every
// later IsWorkCancelled call return true.
type LogReporter struct {
	logger    *slog.Logger
	cancelled atomic.Bool

	mu    sync.Mutex
	works []*work
}

type work struct {
	title string
	total float64
	done  float64
}

var _ ProgressReporter = (*LogReporter)(nil)

func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) BeginWork(title string, amount float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.works = append(r.works, &work{title: title, total: amount})
	r.logger.Info("work started", "title", title, "amount", amount)
}

func (r *LogReporter) EndWork() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.works) == 0 {
		return
	}

	w := r.works[len(r.works)-1]
	r.works = r.works[:len(r.works)-1]
	r.logger.Info("work ended", "title", w.title)
}

func (r *LogReporter) ReportProgress(amount float64, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.works) == 0 {
		r.logger.Debug("progress", "message", message)

		return
	}

	w := r.works[len(r.works)-1]
	w.done += amount
	r.logger.Debug("progress", "title", w.title, "done", w.done, "total", w.total, "message", message)
}

// Cancel requests the running action to stop at the next step boundary.
func (r *LogReporter) Cancel() {
	r.cancelled.Store(true)
}

func (r *LogReporter) IsWorkCancelled() bool {
	return r.cancelled.Load()
}
