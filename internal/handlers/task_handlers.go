package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

const serviceName = "todo-tracker"

type TaskHandler struct {
	TaskService Service
	now         func() time.Time
}

type Option func(*TaskHandler)

// WithClock подменяет источник "сегодня" для значений по умолчанию и проверок формы
func WithClock(now func() time.Time) Option {
	return func(h *TaskHandler) {
		h.now = now
	}
}

func NewTaskHandler(taskService Service, opts ...Option) *TaskHandler {
	h := &TaskHandler{
		TaskService: taskService,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TaskHandler) today() time.Time {
	return task.TruncateDate(h.now())
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
	)
}

// ListTasks - GET /api/tasks; без from/to возвращает все задачи
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	query := r.URL.Query()
	from, err := parseDateParam("from", query.Get("from"))
	if err != nil {
		handleBusinessError(w, err)
		return
	}
	to, err := parseDateParam("to", query.Get("to"))
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	var tasks []*task.Task
	switch {
	case from.IsZero() && to.IsZero():
		tasks, err = h.TaskService.ListAll(r.Context())
	case from.IsZero() || to.IsZero():
		handleBusinessError(w, service.NewValidationError("from/to", "диапазон задаётся обеими датами"))
		return
	default:
		tasks, err = h.TaskService.ListByDateRange(r.Context(), from, to)
	}
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks, h.today()))
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if strings.TrimSpace(request.Title) == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "title"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		handleBusinessError(w, service.NewValidationError("title", "название не может быть пустым"))
		return
	}

	category, err := parseCategory(request.Category)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	dueDate, err := parseDateParam("due_date", request.DueDate)
	if err != nil {
		handleBusinessError(w, err)
		return
	}
	if dueDate.IsZero() {
		handleBusinessError(w, service.NewValidationError("due_date", "дата выполнения должна быть задана"))
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задачи")
	created, err := h.TaskService.CreateTask(r.Context(), request.Title, request.Description, category, dueDate)
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(created, h.today()))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	found, err := h.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.Int64("task_id", found.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(found, h.today()))
}

func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	changed, err := h.TaskService.CompleteTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "complete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача завершена",
		zap.Int64("task_id", id),
		zap.Bool("changed", changed),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.ChangedResponse{Changed: changed})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	changed, err := h.TaskService.DeleteTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.Int64("task_id", id),
		zap.Bool("changed", changed),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.ChangedResponse{Changed: changed})
}

// UpcomingWeek - GET /api/tasks/upcoming; по умолчанию неделя начинается сегодня
func (h *TaskHandler) UpcomingWeek(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	from, err := parseDateParam("from", r.URL.Query().Get("from"))
	if err != nil {
		handleBusinessError(w, err)
		return
	}
	if from.IsZero() {
		from = h.today()
	}

	week, err := h.TaskService.UpcomingWeek(r.Context(), from)
	if err != nil {
		handleServiceError(w, r, err, "upcoming_week")
		return
	}

	logger.Info("HTTP_OUT: Неделя получена",
		zap.Int("total", week.Total()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromWeek(week, h.today()))
}
