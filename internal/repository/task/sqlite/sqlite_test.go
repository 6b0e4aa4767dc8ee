package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
	"todoTracker/internal/models/task"
	"todoTracker/internal/repository"
	"todoTracker/internal/repository/task/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// SQLiteTestSuite гоняет хранилище на настоящем файле во временном каталоге
type SQLiteTestSuite struct {
	suite.Suite
	ctx     context.Context
	path    string
	storage *sqlite.Storage
}

func TestSQLiteTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteTestSuite))
}

func (s *SQLiteTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.path = filepath.Join(s.T().TempDir(), "data", "todo.db")

	storage, err := sqlite.New(s.ctx, s.path)
	require.NoError(s.T(), err)
	s.storage = storage
}

func (s *SQLiteTestSuite) TearDownTest() {
	if s.storage != nil {
		s.storage.Close()
	}
}

func (s *SQLiteTestSuite) create(title string, category task.Category, due time.Time) *task.Task {
	t := task.New(task.NewTask{Title: title, Category: category, DueDate: due})
	require.NoError(s.T(), s.storage.Create(s.ctx, t))
	return t
}

func (s *SQLiteTestSuite) TestHealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

func (s *SQLiteTestSuite) TestCreate_ThenListReturnsPendingRow() {
	due := task.Date(2024, time.June, 1)
	created := s.create("Buy milk", task.CategoryShopping, due)

	assert.Equal(s.T(), int64(1), created.ID)
	assert.False(s.T(), created.CreatedAt.IsZero())

	tasks, err := s.storage.ListByDateRange(s.ctx, due, due)
	require.NoError(s.T(), err)
	require.Len(s.T(), tasks, 1)
	assert.Equal(s.T(), "Buy milk", tasks[0].Title)
	assert.Equal(s.T(), task.CategoryShopping, tasks[0].Category)
	assert.Equal(s.T(), task.StatusPending, tasks[0].Status)
	assert.Equal(s.T(), due, tasks[0].DueDate)
}

func (s *SQLiteTestSuite) TestListByDateRange_OrdersByDueDate() {
	for _, day := range []int{3, 1, 2} {
		s.create(fmt.Sprintf("day %d", day), task.CategoryOthers, task.Date(2024, time.January, day))
	}
	s.create("february", task.CategoryOthers, task.Date(2024, time.February, 1))

	tasks, err := s.storage.ListByDateRange(s.ctx, task.Date(2024, time.January, 1), task.Date(2024, time.January, 3))
	require.NoError(s.T(), err)
	require.Len(s.T(), tasks, 3)
	assert.Equal(s.T(), task.Date(2024, time.January, 1), tasks[0].DueDate)
	assert.Equal(s.T(), task.Date(2024, time.January, 2), tasks[1].DueDate)
	assert.Equal(s.T(), task.Date(2024, time.January, 3), tasks[2].DueDate)

	all, err := s.storage.ListAll(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 4)
	assert.Equal(s.T(), "february", all[3].Title)
}

func (s *SQLiteTestSuite) TestListByDateRange_SameDayNewestFirst() {
	due := task.Date(2024, time.June, 1)
	s.create("Buy milk", task.CategoryShopping, due)
	s.create("Report", task.CategoryWork, due)

	tasks, err := s.storage.ListByDateRange(s.ctx, due, due)
	require.NoError(s.T(), err)
	require.Len(s.T(), tasks, 2)
	assert.Equal(s.T(), int64(2), tasks[0].ID)
	assert.Equal(s.T(), "Report", tasks[0].Title)
	assert.Equal(s.T(), int64(1), tasks[1].ID)
}

func (s *SQLiteTestSuite) TestListByDateRange_EmptyResults() {
	s.create("Task", task.CategoryWork, task.Date(2024, time.June, 1))

	tasks, err := s.storage.ListByDateRange(s.ctx, task.Date(2024, time.June, 5), task.Date(2024, time.June, 1))
	require.NoError(s.T(), err)
	assert.Empty(s.T(), tasks)

	tasks, err = s.storage.ListByDateRange(s.ctx, task.Date(2030, time.January, 1), task.Date(2030, time.January, 2))
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), tasks)
	assert.Empty(s.T(), tasks)
}

func (s *SQLiteTestSuite) TestUpdateStatus() {
	created := s.create("Task", task.CategoryWork, task.Date(2024, time.June, 1))

	changed, err := s.storage.UpdateStatus(s.ctx, created.ID, task.StatusCompleted)
	require.NoError(s.T(), err)
	assert.True(s.T(), changed)

	changed, err = s.storage.UpdateStatus(s.ctx, created.ID, task.StatusCompleted)
	require.NoError(s.T(), err)
	assert.False(s.T(), changed)

	_, err = s.storage.UpdateStatus(s.ctx, created.ID, task.StatusPending)
	assert.ErrorIs(s.T(), err, repository.ErrInvalidTransition)

	_, err = s.storage.UpdateStatus(s.ctx, 404, task.StatusCompleted)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	stored, err := s.storage.GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), task.StatusCompleted, stored.Status)
	assert.Equal(s.T(), created.CreatedAt.Unix(), stored.CreatedAt.Unix())
}

func (s *SQLiteTestSuite) TestDelete() {
	created := s.create("Task", task.CategoryWork, task.Date(2024, time.June, 1))

	changed, err := s.storage.Delete(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), changed)

	_, err = s.storage.GetByID(s.ctx, created.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	_, err = s.storage.Delete(s.ctx, created.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	// AUTOINCREMENT не отдаёт удалённый id повторно
	next := s.create("Next", task.CategoryWork, task.Date(2024, time.June, 1))
	assert.Equal(s.T(), int64(2), next.ID)
}

func (s *SQLiteTestSuite) TestPersistsAcrossReopen() {
	created := s.create("Durable", task.CategoryPersonal, task.Date(2024, time.June, 1))
	s.storage.Close()

	reopened, err := sqlite.New(s.ctx, s.path)
	require.NoError(s.T(), err)
	s.storage = reopened

	stored, err := reopened.GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Durable", stored.Title)
	assert.Equal(s.T(), task.CategoryPersonal, stored.Category)
}

func (s *SQLiteTestSuite) TestConcurrentWritesAndReads() {
	due := task.Date(2024, time.June, 1)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			t := task.New(task.NewTask{Title: fmt.Sprintf("task %d", i), Category: task.CategoryWork, DueDate: due})
			assert.NoError(s.T(), s.storage.Create(s.ctx, t))
		}(i)
		go func() {
			defer wg.Done()
			_, err := s.storage.ListByDateRange(s.ctx, due, due)
			assert.NoError(s.T(), err)
		}()
	}
	wg.Wait()

	tasks, err := s.storage.ListByDateRange(s.ctx, due, due)
	require.NoError(s.T(), err)
	assert.Len(s.T(), tasks, 20)
}

func (s *SQLiteTestSuite) TestDown() {
	s.create("Task", task.CategoryWork, task.Date(2024, time.June, 1))

	require.NoError(s.T(), s.storage.Down(s.ctx))
	require.NoError(s.T(), s.storage.Migrate(s.ctx))

	tasks, err := s.storage.ListAll(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), tasks)
}
