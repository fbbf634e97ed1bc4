package dto

import (
	"time"

	"github.com/yukikurage/rbac-task-api/internal/models"
	"github.com/yukikurage/rbac-task-api/internal/repository"
	"github.com/yukikurage/rbac-task-api/internal/services"
	"github.com/yukikurage/rbac-task-api/internal/utils"
)

// UserRefDTO is a user reference expanded inside a task
type UserRefDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
	AssignedTo  UserRefDTO          `json:"assignedTo"`
	CreatedBy   UserRefDTO          `json:"createdBy"`
	IsDeleted   bool                `json:"isDeleted"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// TaskStatsDTO holds task counts per status and per priority
type TaskStatsDTO struct {
	ByStatus   []repository.GroupCount `json:"byStatus"`
	ByPriority []repository.GroupCount `json:"byPriority"`
}

// DeleteTaskResponse confirms a soft delete
type DeleteTaskResponse struct {
	Message string  `json:"message"`
	Task    TaskDTO `json:"task"`
}

// ToUserRefDTO expands a user reference; an unknown user keeps only its id.
func ToUserRefDTO(id string, user *models.User) UserRefDTO {
	if user == nil {
		return UserRefDTO{ID: id}
	}
	return UserRefDTO{ID: user.ID, Name: user.Name, Email: user.Email}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		AssignedTo:  ToUserRefDTO(task.AssignedTo, task.Assignee),
		CreatedBy:   ToUserRefDTO(task.CreatedBy, task.Creator),
		IsDeleted:   task.IsDeleted,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(list *services.TaskList) TaskListResponse {
	items := make([]TaskDTO, len(list.Tasks))
	for i, task := range list.Tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Pagination: list.Pagination,
	}
}

// ToTaskStatsDTO converts service statistics, rendering empty groups as [].
func ToTaskStatsDTO(stats *services.TaskStats) TaskStatsDTO {
	dto := TaskStatsDTO{
		ByStatus:   stats.ByStatus,
		ByPriority: stats.ByPriority,
	}
	if dto.ByStatus == nil {
		dto.ByStatus = []repository.GroupCount{}
	}
	if dto.ByPriority == nil {
		dto.ByPriority = []repository.GroupCount{}
	}
	return dto
}
