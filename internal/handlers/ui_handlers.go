package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"

	"go.uber.org/zap"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTmpl = template.Must(
	template.New("index.html").
		Funcs(template.FuncMap{
			"weekday": func(date string) string {
				d, err := task.ParseDate(date)
				if err != nil {
					return ""
				}
				return d.Weekday().String()
			},
			"withPage": func(t dto.TaskResponse, p indexPage) taskRow {
				return taskRow{Task: t, Page: p}
			},
		}).
		ParseFS(templatesFS, "templates/index.html"),
)

const (
	viewList = "list"
	viewWeek = "week"
)

type createForm struct {
	Title       string
	Description string
	Category    string
	DueDate     string
}

type indexPage struct {
	From       string
	To         string
	View       string
	Today      string
	Categories []task.Category
	Tasks      []dto.TaskResponse
	Week       *dto.WeekResponse
	Form       createForm
	Error      string
}

type taskRow struct {
	Task dto.TaskResponse
	Page indexPage
}

type listFilter struct {
	from time.Time
	to   time.Time
	view string
}

func (f listFilter) query() url.Values {
	return url.Values{
		"from": {task.FormatDate(f.from)},
		"to":   {task.FormatDate(f.to)},
		"view": {f.view},
	}
}

// filterFrom читает from/to/view; без параметров показывается неделя от сегодняшнего дня
func (h *TaskHandler) filterFrom(values url.Values) (listFilter, error) {
	today := h.today()
	f := listFilter{from: today, to: today.AddDate(0, 0, 6), view: viewList}
	if values.Get("view") == viewWeek {
		f.view = viewWeek
	}

	from, err := parseDateParam("from", values.Get("from"))
	if err != nil {
		return f, err
	}
	to, err := parseDateParam("to", values.Get("to"))
	if err != nil {
		return f, err
	}
	if !from.IsZero() {
		f.from = from
		if to.IsZero() {
			f.to = from.AddDate(0, 0, 6)
		}
	}
	if !to.IsZero() {
		f.to = to
	}
	return f, nil
}

func (h *TaskHandler) redirectHome(w http.ResponseWriter, r *http.Request, f listFilter, errMsg string) {
	query := f.query()
	if errMsg != "" {
		query.Set("error", errMsg)
	}
	http.Redirect(w, r, "/?"+query.Encode(), http.StatusSeeOther)
}

// Index - GET /
func (h *TaskHandler) Index(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	errMsg := r.URL.Query().Get("error")
	f, err := h.filterFrom(r.URL.Query())
	if err != nil {
		errMsg = userMessage(err)
	}
	h.renderIndex(w, r, http.StatusOK, f, createForm{DueDate: task.FormatDate(h.today())}, errMsg)
}

// CreateTaskForm - POST /tasks из HTML-формы
func (h *TaskHandler) CreateTaskForm(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if err := r.ParseForm(); err != nil {
		responseWithError(w, http.StatusBadRequest, "не удалось прочитать форму")
		return
	}
	f, _ := h.filterFrom(r.PostForm)
	form := createForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Category:    r.PostFormValue("category"),
		DueDate:     r.PostFormValue("due_date"),
	}

	if strings.TrimSpace(form.Title) == "" {
		logger.Warn("HTTP: Ошибка валидации формы",
			zap.String("field", "title"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))
		h.renderIndex(w, r, http.StatusBadRequest, f, form, "Название задачи не может быть пустым")
		return
	}

	category, err := parseCategory(form.Category)
	if err != nil {
		h.renderIndex(w, r, http.StatusBadRequest, f, form, userMessage(err))
		return
	}

	dueDate, err := parseDateParam("due_date", form.DueDate)
	if err != nil || dueDate.IsZero() {
		h.renderIndex(w, r, http.StatusBadRequest, f, form, "Укажите дату выполнения в формате ГГГГ-ММ-ДД")
		return
	}
	if dueDate.Before(h.today()) {
		logger.Warn("HTTP: Ошибка валидации формы",
			zap.String("field", "due_date"),
			zap.String("error", "in_past"),
			zap.String("client_ip", r.RemoteAddr))
		h.renderIndex(w, r, http.StatusBadRequest, f, form, "Дата выполнения не может быть в прошлом")
		return
	}

	created, err := h.TaskService.CreateTask(r.Context(), form.Title, form.Description, category, dueDate)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "create_task_form"))
		h.renderIndex(w, r, statusFor(err), f, form, userMessage(err))
		return
	}

	logger.Info("HTTP_OUT: Задача создана из формы",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)))

	h.redirectHome(w, r, f, "")
}

// CompleteTaskForm - POST /tasks/{id}/complete
func (h *TaskHandler) CompleteTaskForm(w http.ResponseWriter, r *http.Request) {
	h.mutateFromForm(w, r, "complete_task_form", h.TaskService.CompleteTask)
}

// DeleteTaskForm - POST /tasks/{id}/delete
func (h *TaskHandler) DeleteTaskForm(w http.ResponseWriter, r *http.Request) {
	h.mutateFromForm(w, r, "delete_task_form", h.TaskService.DeleteTask)
}

func (h *TaskHandler) mutateFromForm(w http.ResponseWriter, r *http.Request, operation string,
	mutate func(context.Context, int64) (bool, error)) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if err := r.ParseForm(); err != nil {
		responseWithError(w, http.StatusBadRequest, "не удалось прочитать форму")
		return
	}
	f, _ := h.filterFrom(r.PostForm)

	id, err := parseID(r)
	if err != nil {
		h.redirectHome(w, r, f, userMessage(err))
		return
	}

	changed, err := mutate(r.Context(), id)
	if err != nil {
		logger.Warn("HTTP: Операция из формы не выполнена",
			zap.String("operation", operation),
			zap.Int64("task_id", id),
			zap.Error(err))
		h.redirectHome(w, r, f, userMessage(err))
		return
	}

	logger.Info("HTTP_OUT: Операция из формы выполнена",
		zap.String("operation", operation),
		zap.Int64("task_id", id),
		zap.Bool("changed", changed))

	h.redirectHome(w, r, f, "")
}

func (h *TaskHandler) renderIndex(w http.ResponseWriter, r *http.Request, status int, f listFilter, form createForm, errMsg string) {
	today := h.today()
	page := indexPage{
		From:       task.FormatDate(f.from),
		To:         task.FormatDate(f.to),
		View:       f.view,
		Today:      task.FormatDate(today),
		Categories: task.Categories,
		Form:       form,
		Error:      errMsg,
	}
	if page.Form.Category == "" {
		page.Form.Category = string(task.CategoryWork)
	}

	if f.view == viewWeek {
		week, err := h.TaskService.UpcomingWeek(r.Context(), f.from)
		if err != nil {
			logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "render_week"))
			status, page.Error = statusFor(err), userMessage(err)
		} else {
			resp := dto.FromWeek(week, today)
			page.Week = &resp
			page.To = resp.To
		}
	} else {
		tasks, err := h.TaskService.ListByDateRange(r.Context(), f.from, f.to)
		if err != nil {
			logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "render_list"))
			status, page.Error = statusFor(err), userMessage(err)
		}
		page.Tasks = dto.FromTaskList(tasks, today)
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, page); err != nil {
		logger.Error("HTTP: Ошибка шаблона", err)
		http.Error(w, "ошибка отображения страницы", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("HTTP: Ошибка записи страницы", zap.Error(err))
	}
}
