package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/rbac-task-api/internal/database"
	"github.com/yukikurage/rbac-task-api/internal/events"
	"github.com/yukikurage/rbac-task-api/internal/models"
	"github.com/yukikurage/rbac-task-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, zerolog.Nop()))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.EventType, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

// failingTaskRepository fails every listing and count with err.
type failingTaskRepository struct {
	repository.TaskRepository
	err error
}

func (r failingTaskRepository) List(context.Context, repository.TaskFilter) ([]models.Task, int64, error) {
	return nil, 0, r.err
}

func (r failingTaskRepository) CountByStatus(context.Context) ([]repository.GroupCount, error) {
	return nil, r.err
}

func (r failingTaskRepository) FindActiveByID(context.Context, string) (*models.Task, error) {
	return nil, r.err
}

var errStoreDown = errors.New("store unavailable")
