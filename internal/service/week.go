package service

import (
	"context"
	"fmt"
	"time"
	"todoTracker/internal/models/task"
)

const weekDays = 7

type Day struct {
	Date  time.Time
	Tasks []*task.Task
}

type Week struct {
	From time.Time
	To   time.Time
	Days []Day
}

func (w Week) Total() int {
	total := 0
	for _, d := range w.Days {
		total += len(d.Tasks)
	}
	return total
}

func (w Week) Pending() int {
	pending := 0
	for _, d := range w.Days {
		for _, t := range d.Tasks {
			if !t.IsCompleted() {
				pending++
			}
		}
	}
	return pending
}

// UpcomingWeek раскладывает задачи на семь дней начиная с from; пустые дни тоже присутствуют
func (s *TaskService) UpcomingWeek(ctx context.Context, from time.Time) (Week, error) {
	if from.IsZero() {
		return Week{}, NewValidationError("from", "начало недели должно быть задано")
	}
	from = task.TruncateDate(from)
	to := from.AddDate(0, 0, weekDays-1)

	tasks, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return Week{}, fmt.Errorf("получение задач недели: %w", err)
	}

	week := Week{From: from, To: to, Days: make([]Day, weekDays)}
	for i := range week.Days {
		week.Days[i] = Day{Date: from.AddDate(0, 0, i), Tasks: []*task.Task{}}
	}
	// список уже отсортирован по дате, порядок внутри дня сохраняется
	for _, t := range tasks {
		offset := int(t.DueDate.Sub(from).Hours() / 24)
		if offset < 0 || offset >= weekDays {
			continue
		}
		week.Days[offset].Tasks = append(week.Days[offset].Tasks, t)
	}
	return week, nil
}
