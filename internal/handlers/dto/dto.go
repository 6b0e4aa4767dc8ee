package dto

import (
	"time"
	"todoTracker/internal/models/task"
	"todoTracker/internal/service"
)

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	DueDate     string `json:"due_date"` // YYYY-MM-DD
}

type TaskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	DueDate     string    `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	IsOverdue   bool      `json:"is_overdue"`
}

// ChangedResponse сообщает клиенту, нужно ли перерисовать список
type ChangedResponse struct {
	Changed bool `json:"changed"`
}

type DayResponse struct {
	Date  string         `json:"date"`
	Tasks []TaskResponse `json:"tasks"`
}

type WeekResponse struct {
	From    string        `json:"from"`
	To      string        `json:"to"`
	Total   int           `json:"total"`
	Pending int           `json:"pending"`
	Days    []DayResponse `json:"days"`
}

func FromTask(t *task.Task, today time.Time) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    string(t.Category),
		Status:      string(t.Status),
		DueDate:     task.FormatDate(t.DueDate),
		CreatedAt:   t.CreatedAt,
		IsOverdue:   t.IsOverdue(today),
	}
}

func FromTaskList(tasks []*task.Task, today time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, today)
	}
	return result
}

func FromWeek(w service.Week, today time.Time) WeekResponse {
	days := make([]DayResponse, len(w.Days))
	for i, d := range w.Days {
		days[i] = DayResponse{
			Date:  task.FormatDate(d.Date),
			Tasks: FromTaskList(d.Tasks, today),
		}
	}
	return WeekResponse{
		From:    task.FormatDate(w.From),
		To:      task.FormatDate(w.To),
		Total:   w.Total(),
		Pending: w.Pending(),
		Days:    days,
	}
}
