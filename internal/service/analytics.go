package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/openboard-dev/openboard/internal/domain"
	"github.com/openboard-dev/openboard/internal/logger"
)

var (
	viewsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openboard",
		Name:      "board_views_recorded_total",
		Help:      "Total number of board views recorded.",
	})
	clicksRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openboard",
		Name:      "block_clicks_recorded_total",
		Help:      "Total number of block clicks recorded.",
	})
	analyticsFlushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openboard",
		Name:      "analytics_flush_failures_total",
		Help:      "Total number of failed analytics flushes to storage.",
	})
)

type AnalyticsService interface {
	RecordView(boardId domain.BoardId)
	RecordClick(boardId domain.BoardId)
	Summary(boardId domain.BoardId) (domain.AnalyticsSummary, error)
}

type AnalyticsStorage interface {
	AddAnalytics(boardId domain.BoardId, delta domain.AnalyticsSummary) error
	Analytics(boardId domain.BoardId) (domain.AnalyticsSummary, error)
}

// Analytics batches view and click events in memory and flushes the
// aggregated deltas to storage on a cron schedule. Losing a flush interval's
// worth of counters on crash is acceptable; per-event writes are not worth
// a database round trip on every public page view.
type Analytics struct {
	mu      sync.Mutex
	pending map[domain.BoardId]domain.AnalyticsSummary

	storage AnalyticsStorage
	cron    *cron.Cron
}

func NewAnalytics(storage AnalyticsStorage) *Analytics {
	return &Analytics{
		pending: make(map[domain.BoardId]domain.AnalyticsSummary),
		storage: storage,
	}
}

// Start schedules periodic flushes. The schedule uses standard cron syntax,
// e.g. "@every 30s".
func (a *Analytics) Start(schedule string) error {
	a.cron = cron.New()
	if _, err := a.cron.AddFunc(schedule, a.Flush); err != nil {
		return err
	}
	a.cron.Start()
	return nil
}

// Stop halts the scheduler and flushes whatever is still pending.
func (a *Analytics) Stop() {
	if a.cron != nil {
		ctx := a.cron.Stop()
		<-ctx.Done()
	}
	a.Flush()
}

func (a *Analytics) RecordView(boardId domain.BoardId) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := a.pending[boardId]
	p.Views++
	a.pending[boardId] = p
	viewsRecorded.Inc()
}

func (a *Analytics) RecordClick(boardId domain.BoardId) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := a.pending[boardId]
	p.Clicks++
	a.pending[boardId] = p
	clicksRecorded.Inc()
}

// Summary returns stored counters plus anything still pending in memory.
func (a *Analytics) Summary(boardId domain.BoardId) (domain.AnalyticsSummary, error) {
	stored, err := a.storage.Analytics(boardId)
	if err != nil {
		return domain.AnalyticsSummary{}, err
	}
	a.mu.Lock()
	pending := a.pending[boardId]
	a.mu.Unlock()
	stored.Views += pending.Views
	stored.Clicks += pending.Clicks
	return stored, nil
}

// Flush writes all pending deltas to storage. Failed boards keep their
// deltas for the next run.
func (a *Analytics) Flush() {
	a.mu.Lock()
	batch := a.pending
	a.pending = make(map[domain.BoardId]domain.AnalyticsSummary)
	a.mu.Unlock()

	for boardId, delta := range batch {
		if err := a.storage.AddAnalytics(boardId, delta); err != nil {
			analyticsFlushFailures.Inc()
			logger.Log.Error("failed to flush analytics", "board_id", boardId, "error", err)
			a.mu.Lock()
			p := a.pending[boardId]
			p.Views += delta.Views
			p.Clicks += delta.Clicks
			a.pending[boardId] = p
			a.mu.Unlock()
		}
	}
}
