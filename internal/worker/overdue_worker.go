package worker

import (
	"context"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	"time"

	"go.uber.org/zap"
)

const defaultInterval = time.Minute

type OverdueSource interface {
	Overdue(today task.Date) []task.Task
}

// OverdueWorker периодически напоминает о невыполненных задачах с прошедшим сроком
type OverdueWorker struct {
	source   OverdueSource
	interval time.Duration
	now      func() time.Time
}

func NewOverdueWorker(source OverdueSource, interval *time.Duration) *OverdueWorker {
	intervalToSet := defaultInterval
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}
	return &OverdueWorker{
		source:   source,
		interval: intervalToSet,
		now:      time.Now,
	}
}

func (w *OverdueWorker) Interval() time.Duration {
	return w.interval
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Debug("Worker: Фоновая проверка просроченных задач", zap.Time("started_at", time.Now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

// Check возвращает id просроченных задач и пишет напоминание, если они есть
func (w *OverdueWorker) Check(ctx context.Context) []string {
	if ctx.Err() != nil {
		return nil
	}
	start := time.Now()

	overdue := w.source.Overdue(task.DateOf(w.now().Local()))
	ids := make([]string, 0, len(overdue))
	for _, t := range overdue {
		ids = append(ids, t.ID)
	}

	if len(ids) > 0 {
		logger.Info("Worker: Есть просроченные задачи",
			zap.Int("overdue", len(ids)),
			zap.Strings("task_ids", ids),
			zap.Duration("ms", time.Since(start)))
	}
	return ids
}
