package sqlite

import (
	"time"
	"todoTracker/internal/models/task"
)

// taskRecord - строка таблицы tasks.
// due_date хранится текстом YYYY-MM-DD: лексический порядок совпадает с календарным.
type taskRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null;default:''"`
	Category    string    `gorm:"size:16;not null"`
	Status      string    `gorm:"size:16;not null;default:Pending;index"`
	DueDate     string    `gorm:"type:text;not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func fromTask(t *task.Task) *taskRecord {
	return &taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    string(t.Category),
		Status:      string(t.Status),
		DueDate:     task.FormatDate(t.DueDate),
		CreatedAt:   t.CreatedAt,
	}
}

func (r *taskRecord) toTask() (*task.Task, error) {
	due, err := task.ParseDate(r.DueDate)
	if err != nil {
		return nil, err
	}
	return &task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    task.Category(r.Category),
		Status:      task.Status(r.Status),
		DueDate:     due,
		CreatedAt:   r.CreatedAt.UTC(),
	}, nil
}
