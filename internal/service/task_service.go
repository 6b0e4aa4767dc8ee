package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	rep "todoTracker/internal/repository"

	"go.uber.org/zap"
)

// NotFoundMode определяет реакцию на изменение несуществующей задачи
type NotFoundMode string

const (
	// NotFoundStrict - явная ошибка NOT_FOUND
	NotFoundStrict NotFoundMode = "strict"
	// NotFoundSilent - тихий no-op (changed=false), как вела себя исходная форма
	NotFoundSilent NotFoundMode = "silent"
)

func ParseNotFoundMode(raw string) (NotFoundMode, error) {
	switch NotFoundMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", NotFoundStrict:
		return NotFoundStrict, nil
	case NotFoundSilent:
		return NotFoundSilent, nil
	}
	return "", fmt.Errorf("неизвестный режим not_found_mode: %q", raw)
}

type TaskService struct {
	repo         TaskRepository
	NotFoundMode NotFoundMode
}

func NewTaskService(repo TaskRepository, mode NotFoundMode) *TaskService {
	if mode == "" {
		mode = NotFoundStrict
	}
	return &TaskService{
		repo:         repo,
		NotFoundMode: mode,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// CreateTask проверяет поля повторно, даже если форма уже это сделала
func (s *TaskService) CreateTask(ctx context.Context, title, description string, category task.Category, dueDate time.Time) (*task.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "название не может быть пустым")
	}
	if !category.Valid() {
		return nil, NewValidationError("category", fmt.Sprintf("неизвестная категория %q", category))
	}
	if dueDate.IsZero() {
		return nil, NewValidationError("due_date", "дата выполнения должна быть задана")
	}

	newTask := task.New(task.NewTask{
		Title:       title,
		Description: description,
		Category:    category,
		DueDate:     dueDate,
	})
	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.Int64("task_id", newTask.ID),
		zap.String("category", string(newTask.Category)),
		zap.String("due_date", task.FormatDate(newTask.DueDate)))
	return newTask, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound(id, err)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return found, nil
}

// ListByDateRange - задачи со сроком в [start, end]; перевёрнутый диапазон даёт пустой список
func (s *TaskService) ListByDateRange(ctx context.Context, start, end time.Time) ([]*task.Task, error) {
	if start.IsZero() {
		return nil, NewValidationError("from", "начало диапазона должно быть задано")
	}
	if end.IsZero() {
		return nil, NewValidationError("to", "конец диапазона должен быть задан")
	}
	start, end = task.TruncateDate(start), task.TruncateDate(end)
	if start.After(end) {
		return []*task.Task{}, nil
	}

	tasks, err := s.repo.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) ListAll(ctx context.Context) ([]*task.Task, error) {
	tasks, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) CompleteTask(ctx context.Context, id int64) (bool, error) {
	return s.UpdateStatus(ctx, id, task.StatusCompleted)
}

// UpdateStatus возвращает changed=true, только если строка действительно изменилась
func (s *TaskService) UpdateStatus(ctx context.Context, id int64, status task.Status) (bool, error) {
	if !status.Valid() {
		return false, NewValidationError("status", fmt.Sprintf("неизвестный статус %q", status))
	}

	changed, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		switch {
		case errors.Is(err, rep.ErrNotFound):
			return false, s.notFound(id, "update_status", err)
		case errors.Is(err, rep.ErrInvalidTransition):
			logger.Info("Service: Недопустимая смена статуса",
				zap.Int64("target_id", id),
				zap.String("to", string(status)))
			return false, NewInvalidTransition(id, string(status), err)
		}
		return false, fmt.Errorf("обновление статуса: %w", err)
	}

	if changed {
		logger.Info("Service: Статус задачи обновлён", zap.Int64("task_id", id), zap.String("status", string(status)))
	}
	return changed, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) (bool, error) {
	changed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return false, s.notFound(id, "delete", err)
		}
		return false, fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.Int64("task_id", id))
	return changed, nil
}

// в тихом режиме отсутствие задачи не ошибка: изменений нет, перерисовка не нужна
func (s *TaskService) notFound(id int64, operation string, err error) error {
	logger.Info("Service: Задача не найдена",
		zap.Int64("target_id", id),
		zap.String("operation", operation),
		zap.String("mode", string(s.NotFoundMode)))

	if s.NotFoundMode == NotFoundSilent {
		return nil
	}
	return NewNotFound(id, err)
}
