package handlers

import (
	"context"
	"time"
	"todoTracker/internal/models/task"
	"todoTracker/internal/service"
)

type Service interface {
	HealthCheck(context.Context) error
	CreateTask(ctx context.Context, title, description string, category task.Category, dueDate time.Time) (*task.Task, error)
	GetTaskByID(context.Context, int64) (*task.Task, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*task.Task, error)
	ListAll(context.Context) ([]*task.Task, error)
	UpcomingWeek(ctx context.Context, from time.Time) (service.Week, error)
	CompleteTask(context.Context, int64) (bool, error)
	DeleteTask(context.Context, int64) (bool, error)
}
