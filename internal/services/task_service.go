package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/rbac-task-api/internal/events"
	"github.com/yukikurage/rbac-task-api/internal/models"
	"github.com/yukikurage/rbac-task-api/internal/repository"
	"github.com/yukikurage/rbac-task-api/internal/utils"
)

// TaskService decides which tasks a caller may see or change and computes task statistics.
type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput, callerID string) (*models.Task, error)
	GetTasks(ctx context.Context, principal models.Principal, query ListTasksQuery) (*TaskList, error)
	GetTaskByID(ctx context.Context, taskID string, principal models.Principal) (*models.Task, error)
	UpdateTask(ctx context.Context, taskID string, input UpdateTaskInput, principal models.Principal) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID string, principal models.Principal) (*models.Task, error)
	GetTaskStats(ctx context.Context) (*TaskStats, error)
}

type taskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	publisher events.Publisher
	log       zerolog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, publisher events.Publisher, log zerolog.Logger) TaskService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &taskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		publisher: publisher,
		log:       log.With().Str("component", "task_service").Logger(),
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssignedTo  string
}

// UpdateTaskInput is a partial update. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	AssignedTo   *string
}

// ListTasksQuery carries the raw listing parameters. Out of range values fall back to defaults.
type ListTasksQuery struct {
	Page     int
	Limit    int
	Status   string
	Priority string
	SortBy   string
}

// TaskList is one page of tasks
type TaskList struct {
	Tasks      []models.Task
	Pagination utils.PaginationResponse
}

// TaskStats holds task counts grouped by status and by priority
type TaskStats struct {
	ByStatus   []repository.GroupCount
	ByPriority []repository.GroupCount
}

// CreateTask creates a task owned by the caller. Any authenticated caller may create tasks.
func (s *taskService) CreateTask(ctx context.Context, input CreateTaskInput, callerID string) (*models.Task, error) {
	assignedTo := strings.TrimSpace(input.AssignedTo)
	if assignedTo == "" {
		assignedTo = callerID
	} else if err := repository.ValidateID(assignedTo); err != nil {
		return nil, fieldError("assignedTo", "must be a valid user id")
	}

	task := &models.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		AssignedTo:  assignedTo,
		CreatedBy:   callerID,
	}
	task.ApplyDefaults()

	if err := validateModel(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.publish(ctx, events.TaskCreated, task, callerID)

	if err := s.expand(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTasks lists non-deleted tasks visible to the principal
func (s *taskService) GetTasks(ctx context.Context, principal models.Principal, query ListTasksQuery) (*TaskList, error) {
	params := utils.NewPaginationParams(query.Page, query.Limit)

	filter := repository.TaskFilter{
		Sort:   repository.ParseTaskSort(query.SortBy),
		Offset: params.Offset,
		Limit:  params.Limit,
	}

	// Row-level visibility: only admins see tasks assigned to others.
	if !principal.IsAdmin() {
		callerID := principal.UserID
		filter.AssignedTo = &callerID
	}
	if status := models.TaskStatus(query.Status); status.Valid() {
		filter.Status = &status
	}
	if priority := models.TaskPriority(query.Priority); priority.Valid() {
		filter.Priority = &priority
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	refs := make([]*models.Task, len(tasks))
	for i := range tasks {
		refs[i] = &tasks[i]
	}
	if err := s.expand(ctx, refs...); err != nil {
		return nil, err
	}

	return &TaskList{
		Tasks:      tasks,
		Pagination: utils.NewPaginationResponse(params, total),
	}, nil
}

// GetTaskByID returns a task visible to the principal
func (s *taskService) GetTaskByID(ctx context.Context, taskID string, principal models.Principal) (*models.Task, error) {
	task, err := s.findActive(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !canAccess(task, principal) {
		return nil, ErrTaskAccessDenied
	}

	if err := s.expand(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies a partial update. Authorization follows the assignee, like reads.
func (s *taskService) UpdateTask(ctx context.Context, taskID string, input UpdateTaskInput, principal models.Principal) (*models.Task, error) {
	task, err := s.findActive(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !canAccess(task, principal) {
		return nil, ErrTaskUpdateDenied
	}

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.AssignedTo != nil {
		assignedTo := strings.TrimSpace(*input.AssignedTo)
		if err := repository.ValidateID(assignedTo); err != nil {
			return nil, fieldError("assignedTo", "must be a valid user id")
		}
		task.AssignedTo = assignedTo
	}

	if err := validateModel(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.publish(ctx, events.TaskUpdated, task, principal.UserID)

	if err := s.expand(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask soft deletes a task. Only its creator or an admin may delete it.
func (s *taskService) DeleteTask(ctx context.Context, taskID string, principal models.Principal) (*models.Task, error) {
	task, err := s.findActive(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !principal.IsAdmin() && task.CreatedBy != principal.UserID {
		return nil, ErrTaskDeleteDenied
	}

	task.IsDeleted = true
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}

	s.publish(ctx, events.TaskDeleted, task, principal.UserID)

	if err := s.expand(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTaskStats counts non-deleted tasks by status and by priority
func (s *taskService) GetTaskStats(ctx context.Context) (*TaskStats, error) {
	byStatus, err := s.taskRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by status: %w", err)
	}

	byPriority, err := s.taskRepo.CountByPriority(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by priority: %w", err)
	}

	return &TaskStats{ByStatus: byStatus, ByPriority: byPriority}, nil
}

func (s *taskService) findActive(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindActiveByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		if errors.Is(err, repository.ErrInvalidID) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func canAccess(task *models.Task, principal models.Principal) bool {
	return principal.IsAdmin() || task.AssignedTo == principal.UserID
}

// expand resolves the assignee and creator of each task in one user lookup.
func (s *taskService) expand(ctx context.Context, tasks ...*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]string, 0, len(tasks)*2)
	for _, task := range tasks {
		ids = append(ids, task.AssignedTo, task.CreatedBy)
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load task users: %w", err)
	}

	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, task := range tasks {
		task.Assignee = byID[task.AssignedTo]
		task.Creator = byID[task.CreatedBy]
	}
	return nil
}

func (s *taskService) publish(ctx context.Context, eventType events.EventType, task *models.Task, actorID string) {
	event := events.Event{
		Type:       eventType,
		TaskID:     task.ID,
		ActorID:    actorID,
		AssignedTo: task.AssignedTo,
		OccurredAt: time.Now().UTC(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).
			Str("task_id", task.ID).
			Str("event", string(eventType)).
			Msg("failed to publish task event")
	}
}
