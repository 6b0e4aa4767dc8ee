package task

import (
	"strings"
	"time"
)

type Task struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    Category  `json:"category" db:"category"`
	Status      Status    `json:"status" db:"status"`
	DueDate     time.Time `json:"due_date" db:"due_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Status string
type Category string

const StatusPending Status = "Pending"
const StatusCompleted Status = "Completed"

const CategoryWork Category = "Work"
const CategoryPersonal Category = "Personal"
const CategoryShopping Category = "Shopping"
const CategoryOthers Category = "Others"

// Categories в порядке отображения в форме
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryShopping, CategoryOthers}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory принимает значение без учёта регистра и лишних пробелов
func ParseCategory(raw string) (Category, bool) {
	raw = strings.TrimSpace(raw)
	for _, known := range Categories {
		if strings.EqualFold(raw, string(known)) {
			return known, true
		}
	}
	return "", false
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

func ParseStatus(raw string) (Status, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(raw, string(StatusPending)):
		return StatusPending, true
	case strings.EqualFold(raw, string(StatusCompleted)):
		return StatusCompleted, true
	}
	return "", false
}

// CanTransitionTo: статус меняется только Pending -> Completed, повтор того же статуса допустим
func (s Status) CanTransitionTo(next Status) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return s == StatusPending && next == StatusCompleted
}

func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsOverdue - незавершённая задача с датой раньше today
func (t *Task) IsOverdue(today time.Time) bool {
	return !t.IsCompleted() && t.DueDate.Before(TruncateDate(today))
}

type NewTask struct {
	Title       string
	Description string
	Category    Category
	DueDate     time.Time
}

func New(params NewTask) *Task {
	return &Task{
		Title:       strings.TrimSpace(params.Title),
		Description: params.Description,
		Category:    params.Category,
		Status:      StatusPending,
		DueDate:     TruncateDate(params.DueDate),
	}
}
