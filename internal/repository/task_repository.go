package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/rbac-task-api/internal/database"
	"github.com/yukikurage/rbac-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

var taskSortColumns = map[SortField]string{
	SortByCreatedAt: "created_at",
	SortByUpdatedAt: "updated_at",
	SortByDueDate:   "due_date",
	SortByTitle:     "title",
	SortByStatus:    "status",
	SortByPriority:  "priority",
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindActiveByID finds a non-deleted task by ID
func (r *GormTaskRepository) FindActiveByID(ctx context.Context, id string) (*models.Task, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	var task models.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&task).Error
	if err != nil {
		return nil, translateNotFound(err)
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("is_deleted = ?", false)

	// Apply filters
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}

	// Reuse the filtered statement for both the count and the page
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	sort := filter.Sort
	column, ok := taskSortColumns[sort.Field]
	if !ok {
		sort = DefaultTaskSort
		column = taskSortColumns[sort.Field]
	}

	tasks := []models.Task{}
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: sort.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: sort.Desc}).
		Scopes(database.Paginate(filter.Offset, filter.Limit)).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("find tasks: %w", err)
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// CountByStatus groups non-deleted tasks by status
func (r *GormTaskRepository) CountByStatus(ctx context.Context) ([]GroupCount, error) {
	return r.countBy(ctx, "status")
}

// CountByPriority groups non-deleted tasks by priority
func (r *GormTaskRepository) CountByPriority(ctx context.Context) ([]GroupCount, error) {
	return r.countBy(ctx, "priority")
}

type groupRow struct {
	GroupKey string
	Total    int64
}

func (r *GormTaskRepository) countBy(ctx context.Context, column string) ([]GroupCount, error) {
	var rows []groupRow
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select(column+" AS group_key, COUNT(*) AS total").
		Where("is_deleted = ?", false).
		Group(column).
		Order(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks by %s: %w", column, err)
	}

	counts := make([]GroupCount, len(rows))
	for i, row := range rows {
		counts[i] = GroupCount{Group: row.GroupKey, Count: row.Total}
	}
	return counts, nil
}

// Ping checks the database connection
func (r *GormTaskRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
