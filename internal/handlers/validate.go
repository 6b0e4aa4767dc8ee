package handlers

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"
	"todoTracker/internal/models/task"
	"todoTracker/internal/service"

	"github.com/go-chi/chi/v5"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewValidationError("id", "id должен быть положительным целым числом")
	}
	return id, nil
}

// parseDateParam - пустое значение даёт нулевую дату без ошибки
func parseDateParam(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := task.ParseDate(raw)
	if err != nil {
		return time.Time{}, service.NewValidationError(field, "ожидается дата в формате ГГГГ-ММ-ДД")
	}
	return date, nil
}

func parseCategory(raw string) (task.Category, error) {
	category, ok := task.ParseCategory(raw)
	if !ok {
		return "", service.NewValidationError("category", "допустимые категории: Work, Personal, Shopping, Others")
	}
	return category, nil
}
