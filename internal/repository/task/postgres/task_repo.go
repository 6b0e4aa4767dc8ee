package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	repo "todoTracker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

const selectColumns = `SELECT id, title, description, category, status, due_date, created_at FROM tasks`

type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

type Storage struct {
	pool       *pgxpool.Pool
	connString string
}

func New(ctx context.Context, connString string, opts PoolOptions) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool, connString: connString}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	taskToCreate.Status = task.StatusPending
	taskToCreate.DueDate = task.TruncateDate(taskToCreate.DueDate)

	query := `INSERT INTO tasks
				(title, description, category, status, due_date, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.Title,
		taskToCreate.Description,
		string(taskToCreate.Category),
		string(taskToCreate.Status),
		taskToCreate.DueDate,
		time.Now().UTC(),
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err,
			zap.String("pg_code", pgCode(err)),
			zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	taskToCreate.CreatedAt = taskToCreate.CreatedAt.UTC()

	logSlow("create", start)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, selectColumns+` WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачу", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	found, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[task.Task])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Ошибка сканирования задачи", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	logSlow("get_by_id", start)
	return normalize(found), nil
}

func (s *Storage) ListByDateRange(ctx context.Context, from, to time.Time) ([]*task.Task, error) {
	from, to = task.TruncateDate(from), task.TruncateDate(to)
	if from.After(to) {
		return []*task.Task{}, nil
	}

	query := selectColumns + `
				WHERE due_date BETWEEN $1 AND $2
				ORDER BY due_date ASC, created_at DESC, id DESC`

	return s.list(ctx, "list_by_date_range", query, from, to)
}

func (s *Storage) ListAll(ctx context.Context) ([]*task.Task, error) {
	query := selectColumns + `
				ORDER BY due_date ASC, created_at DESC, id DESC`

	return s.list(ctx, "list_all", query)
}

func (s *Storage) list(ctx context.Context, operation, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	tasks, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[task.Task])
	if err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	for _, t := range tasks {
		normalize(t)
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}

	logSlow(operation, start)
	return tasks, nil
}

func (s *Storage) UpdateStatus(ctx context.Context, id int64, status task.Status) (bool, error) {
	start := time.Now()
	changed := false

	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repo.ErrNotFound
			}
			return err
		}

		if !task.Status(current).CanTransitionTo(status) {
			return repo.ErrInvalidTransition
		}
		if task.Status(current) == status {
			return nil
		}

		tag, err := tx.Exec(ctx, `UPDATE tasks SET status = $1 WHERE id = $2`, string(status), id)
		if err != nil {
			return err
		}
		changed = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrInvalidTransition) {
			return false, err
		}
		logger.Error("Repository: Не удалось обновить статус", err,
			zap.Int64("task_id", id),
			zap.String("pg_code", pgCode(err)))
		return false, fmt.Errorf("обновление статуса: %w", err)
	}

	logSlow("update_status", start)
	return changed, nil
}

func (s *Storage) Delete(ctx context.Context, id int64) (bool, error) {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Int64("task_id", id), zap.Duration("ms", time.Since(start)))
		return false, fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, repo.ErrNotFound
	}

	logSlow("delete", start)
	return true, nil
}

func normalize(t *task.Task) *task.Task {
	t.DueDate = task.TruncateDate(t.DueDate)
	t.CreatedAt = t.CreatedAt.UTC()
	return t
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func logSlow(operation string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.String("operation", operation), zap.Duration("ms", elapsed))
	}
}
