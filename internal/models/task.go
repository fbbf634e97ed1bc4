package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskStatuses lists the status enum in declaration order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

var TaskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          string       `gorm:"primarykey;type:varchar(36)" bson:"_id" json:"id"`
	Title       string       `gorm:"type:varchar(100);not null" bson:"title" json:"title" validate:"required,max=100"`
	Description string       `gorm:"type:varchar(500);not null" bson:"description" json:"description" validate:"required,max=500"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'todo';index" bson:"status" json:"status" validate:"required,oneof=todo in-progress done"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium';index" bson:"priority" json:"priority" validate:"required,oneof=low medium high"`
	DueDate     *time.Time   `bson:"dueDate,omitempty" json:"dueDate"`
	AssignedTo  string       `gorm:"type:varchar(36);not null;index" bson:"assignedTo" json:"assignedTo" validate:"required"`
	CreatedBy   string       `gorm:"type:varchar(36);not null;index" bson:"createdBy" json:"createdBy" validate:"required"`
	IsDeleted   bool         `gorm:"not null;default:false;index" bson:"isDeleted" json:"isDeleted"`
	CreatedAt   time.Time    `gorm:"index" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time    `bson:"updatedAt" json:"updatedAt"`

	// Populated by the service from the user store; never persisted.
	Assignee *User `gorm:"-" bson:"-" json:"-"`
	Creator  *User `gorm:"-" bson:"-" json:"-"`
}

// AssignID gives the task a fresh UUID unless it already has one.
func (t *Task) AssignID() {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
}

// ApplyDefaults fills the enum fields left empty by the caller.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	t.AssignID()
	return nil
}
