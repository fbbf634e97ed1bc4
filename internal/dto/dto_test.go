package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/rbac-task-api/internal/models"
	"github.com/yukikurage/rbac-task-api/internal/services"
)

func TestToTaskDTO_ExpandsUsers(t *testing.T) {
	task := models.Task{
		ID:         "t1",
		Title:      "T",
		AssignedTo: "u1",
		CreatedBy:  "u2",
		Assignee:   &models.User{ID: "u1", Name: "Ann", Email: "ann@example.com", PasswordHash: "secret"},
	}

	dto := ToTaskDTO(task)

	assert.Equal(t, UserRefDTO{ID: "u1", Name: "Ann", Email: "ann@example.com"}, dto.AssignedTo)
	assert.Equal(t, UserRefDTO{ID: "u2"}, dto.CreatedBy)
}

func TestTaskDTO_JSONShape(t *testing.T) {
	data, err := json.Marshal(ToTaskDTO(models.Task{ID: "t1", AssignedTo: "u1", CreatedBy: "u1"}))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"id", "title", "description", "status", "priority", "dueDate", "assignedTo", "createdBy", "isDeleted", "createdAt", "updatedAt"} {
		assert.Contains(t, decoded, key)
	}
	assert.Nil(t, decoded["dueDate"])
}

func TestToTaskStatsDTO_EmptyGroups(t *testing.T) {
	data, err := json.Marshal(ToTaskStatsDTO(&services.TaskStats{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"byStatus":[],"byPriority":[]}`, string(data))
}

func TestToAuthResponse_OmitsPassword(t *testing.T) {
	expires := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resp := ToAuthResponse(&services.AuthResult{
		User:      &models.User{ID: "u1", Name: "Ann", Email: "ann@example.com", PasswordHash: "hash", Role: models.RoleUser},
		Token:     "tok",
		ExpiresAt: expires,
	})

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, models.RoleUser, resp.User.Role)
}
