package worker

import (
	"context"
	"fmt"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

const defaultInterval = time.Hour

type TaskSource interface {
	UpcomingWeek(ctx context.Context, from time.Time) (service.Week, error)
	ListAll(context.Context) ([]*task.Task, error)
}

// Digest - сводка незавершённых задач на ближайшую неделю
type Digest struct {
	From         time.Time
	PendingByDay []int
	Pending      int
	Overdue      int
}

type DigestWorker struct {
	source   TaskSource
	interval time.Duration
	now      func() time.Time
}

func NewDigestWorker(source TaskSource, interval time.Duration) *DigestWorker {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &DigestWorker{
		source:   source,
		interval: interval,
		now:      time.Now,
	}
}

// Start блокируется до отмены ctx; первая сводка строится сразу
func (w *DigestWorker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Сводка задач запущена", zap.Duration("interval", w.interval))
	w.run(ctx)

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Сводка задач останавливается")
			return nil
		}
	}
}

func (w *DigestWorker) run(ctx context.Context) {
	if _, err := w.Check(ctx); err != nil {
		logger.Warn("Worker: ошибка построения сводки", zap.Error(err))
	}
}

func (w *DigestWorker) Check(ctx context.Context) (Digest, error) {
	start := time.Now()
	today := task.TruncateDate(w.now())

	week, err := w.source.UpcomingWeek(ctx, today)
	if err != nil {
		return Digest{}, fmt.Errorf("получение недели: %w", err)
	}

	all, err := w.source.ListAll(ctx)
	if err != nil {
		return Digest{}, fmt.Errorf("получение задач: %w", err)
	}

	digest := Digest{From: today, PendingByDay: make([]int, len(week.Days))}
	fields := make([]zap.Field, 0, len(week.Days)+4)
	for i, day := range week.Days {
		for _, t := range day.Tasks {
			if !t.IsCompleted() {
				digest.PendingByDay[i]++
			}
		}
		digest.Pending += digest.PendingByDay[i]
		fields = append(fields, zap.Int(task.FormatDate(day.Date), digest.PendingByDay[i]))
	}
	for _, t := range all {
		if t.IsOverdue(today) {
			digest.Overdue++
		}
	}

	fields = append(fields,
		zap.Int("pending", digest.Pending),
		zap.Int("overdue", digest.Overdue),
		zap.Duration("ms", time.Since(start)),
	)
	logger.Info("Worker: Сводка задач на неделю", fields...)
	return digest, nil
}
