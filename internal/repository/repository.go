package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/rbac-task-api/internal/models"
)

var (
	// ErrNotFound is returned when no matching record exists.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned when an identifier is not a well-formed UUID.
	ErrInvalidID = errors.New("invalid identifier format")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a new task
	Create(ctx context.Context, task *models.Task) error

	// FindActiveByID finds a task that has not been soft deleted
	FindActiveByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves non-deleted tasks with filtering, sorting and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves every field of an existing task
	Update(ctx context.Context, task *models.Task) error

	// CountByStatus counts non-deleted tasks grouped by status
	CountByStatus(ctx context.Context) ([]GroupCount, error)

	// CountByPriority counts non-deleted tasks grouped by priority
	CountByPriority(ctx context.Context) ([]GroupCount, error)

	// Ping checks the connection to the underlying store
	Ping(ctx context.Context) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByIDs returns the users that exist among ids, in no particular order
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	AssignedTo *string
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	Sort       TaskSort
	Offset     int
	Limit      int
}

// GroupCount is one bucket of a grouped count.
type GroupCount struct {
	Group string `json:"group"`
	Count int64  `json:"count"`
}

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByDueDate   SortField = "dueDate"
	SortByTitle     SortField = "title"
	SortByStatus    SortField = "status"
	SortByPriority  SortField = "priority"
)

// TaskSort orders a task listing. The record id breaks ties in the same direction.
type TaskSort struct {
	Field SortField
	Desc  bool
}

// DefaultTaskSort is newest first.
var DefaultTaskSort = TaskSort{Field: SortByCreatedAt, Desc: true}

// ParseTaskSort reads a sort key such as "-createdAt" or "title".
// Unknown keys yield DefaultTaskSort.
func ParseTaskSort(raw string) TaskSort {
	raw = strings.TrimSpace(raw)
	desc := strings.HasPrefix(raw, "-")
	field := SortField(strings.TrimPrefix(raw, "-"))

	switch field {
	case SortByCreatedAt, SortByUpdatedAt, SortByDueDate, SortByTitle, SortByStatus, SortByPriority:
		return TaskSort{Field: field, Desc: desc}
	}
	return DefaultTaskSort
}

// ValidateID rejects identifiers that are not UUIDs.
func ValidateID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists || v == "" {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
