package service

import (
	"context"
	"time"
	"todoTracker/internal/models/task"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	GetByID(context.Context, int64) (*task.Task, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*task.Task, error)
	ListAll(context.Context) ([]*task.Task, error)
	UpdateStatus(context.Context, int64, task.Status) (bool, error)
	Delete(context.Context, int64) (bool, error)
}
