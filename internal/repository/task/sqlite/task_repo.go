package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	repo "todoTracker/internal/repository"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQuery = 100 * time.Millisecond

type Storage struct {
	db   *gorm.DB
	path string
}

// New открывает файл базы и накатывает схему.
// Пишет один процесс, поэтому соединение одно: операции сериализуются самим пулом.
func New(ctx context.Context, path string) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			logger.Error("Repository: Не удалось создать каталог базы", err, zap.String("path", path))
			return nil, fmt.Errorf("создание каталога базы: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("Repository: Ошибка открытия SQLite", err, zap.String("path", path))
		return nil, fmt.Errorf("открытие базы: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("получение sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	s := &Storage{db: db, path: path}
	if err := s.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Info("Repository: Успешное подключение к SQLite", zap.String("path", path))
	return s, nil
}

func (s *Storage) Close() {
	sqlDB, err := s.db.DB()
	if err != nil {
		logger.Error("Repository: Не удалось получить sql.DB", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Repository: Ошибка закрытия SQLite", err)
		return
	}
	logger.Info("Repository: Соединение с SQLite закрыто")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("получение sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&taskRecord{}); err != nil {
		logger.Error("Repository: Ошибка миграции SQLite", err)
		return fmt.Errorf("миграция схемы: %w", err)
	}
	return nil
}

func (s *Storage) Down(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Migrator().DropTable(&taskRecord{}); err != nil {
		logger.Error("Repository: Ошибка отката схемы SQLite", err)
		return fmt.Errorf("откат схемы: %w", err)
	}
	logger.Info("Repository: Таблица tasks удалена")
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	taskToCreate.Status = task.StatusPending
	taskToCreate.DueDate = task.TruncateDate(taskToCreate.DueDate)
	taskToCreate.CreatedAt = time.Now().UTC()

	record := fromTask(taskToCreate)
	record.ID = 0
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	taskToCreate.ID = record.ID

	logSlow("create", start)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()

	var record taskRecord
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	logSlow("get_by_id", start)
	return record.toTask()
}

func (s *Storage) ListByDateRange(ctx context.Context, from, to time.Time) ([]*task.Task, error) {
	start := time.Now()
	from, to = task.TruncateDate(from), task.TruncateDate(to)
	if from.After(to) {
		return []*task.Task{}, nil
	}

	var records []taskRecord
	err := s.db.WithContext(ctx).
		Where("due_date BETWEEN ? AND ?", task.FormatDate(from), task.FormatDate(to)).
		Order("due_date ASC, created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	logSlow("list_by_date_range", start)
	return toTasks(records)
}

func (s *Storage) ListAll(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()

	var records []taskRecord
	err := s.db.WithContext(ctx).
		Order("due_date ASC, created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	logSlow("list_all", start)
	return toTasks(records)
}

func (s *Storage) UpdateStatus(ctx context.Context, id int64, status task.Status) (bool, error) {
	start := time.Now()
	changed := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record taskRecord
		if err := tx.Select("id", "status").First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}

		current := task.Status(record.Status)
		if !current.CanTransitionTo(status) {
			return repo.ErrInvalidTransition
		}
		if current == status {
			return nil
		}

		result := tx.Model(&taskRecord{}).Where("id = ?", id).Update("status", string(status))
		if result.Error != nil {
			return result.Error
		}
		changed = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrInvalidTransition) {
			return false, err
		}
		logger.Error("Repository: Не удалось обновить статус", err, zap.Int64("task_id", id))
		return false, fmt.Errorf("обновление статуса: %w", err)
	}

	logSlow("update_status", start)
	return changed, nil
}

func (s *Storage) Delete(ctx context.Context, id int64) (bool, error) {
	start := time.Now()

	result := s.db.WithContext(ctx).Delete(&taskRecord{}, id)
	if result.Error != nil {
		logger.Error("Repository: Не удалось удалить задачу", result.Error, zap.Int64("task_id", id))
		return false, fmt.Errorf("удаление задачи: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, repo.ErrNotFound
	}

	logSlow("delete", start)
	return true, nil
}

func toTasks(records []taskRecord) ([]*task.Task, error) {
	tasks := make([]*task.Task, 0, len(records))
	for i := range records {
		t, err := records[i].toTask()
		if err != nil {
			logger.Warn("Repository: Ошибка преобразования строки", zap.Int64("task_id", records[i].ID), zap.Error(err))
			return nil, fmt.Errorf("разбор задачи %d: %w", records[i].ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func logSlow(operation string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленная операция", zap.String("operation", operation), zap.Duration("ms", elapsed))
	}
}
