package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	repo "todoTracker/internal/repository"
)

type TaskStorage struct {
	storage map[int64]*task.Task
	mtx     *sync.RWMutex
	lastID  int64
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]*task.Task),
		mtx:     &sync.RWMutex{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: In-memory хранилище доступно")
	return nil
}

func (s *TaskStorage) Close() {}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	// id только растёт, удалённые номера не переиспользуются
	s.lastID++
	taskToCreate.ID = s.lastID
	taskToCreate.Status = task.StatusPending
	taskToCreate.DueDate = task.TruncateDate(taskToCreate.DueDate)
	taskToCreate.CreatedAt = time.Now().UTC()

	stored := *taskToCreate
	s.storage[stored.ID] = &stored
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	found := *taskToGet
	return &found, nil
}

func (s *TaskStorage) ListByDateRange(ctx context.Context, start, end time.Time) ([]*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start, end = task.TruncateDate(start), task.TruncateDate(end)

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	if start.After(end) {
		return res, nil
	}
	for _, stored := range s.storage {
		if stored.DueDate.Before(start) || stored.DueDate.After(end) {
			continue
		}
		found := *stored
		res = append(res, &found)
	}
	sortByDueDate(res)
	return res, nil
}

func (s *TaskStorage) ListAll(ctx context.Context) ([]*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*task.Task, 0, len(s.storage))
	for _, stored := range s.storage {
		found := *stored
		res = append(res, &found)
	}
	sortByDueDate(res)
	return res, nil
}

func (s *TaskStorage) UpdateStatus(ctx context.Context, id int64, status task.Status) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.storage[id]
	if !ok {
		return false, repo.ErrNotFound
	}
	if !stored.Status.CanTransitionTo(status) {
		return false, repo.ErrInvalidTransition
	}
	if stored.Status == status {
		return false, nil
	}
	stored.Status = status
	return true, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return false, repo.ErrNotFound
	}
	delete(s.storage, id)
	return true, nil
}

// due_date по возрастанию, внутри дня - сначала созданные позже
func sortByDueDate(tasks []*task.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
