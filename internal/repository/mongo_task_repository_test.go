package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/rbac-task-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestBuildTaskQuery(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "isDeleted", Value: false}}, buildTaskQuery(TaskFilter{}))

	user := "u1"
	status := models.TaskStatusDone
	priority := models.TaskPriorityHigh
	query := buildTaskQuery(TaskFilter{AssignedTo: &user, Status: &status, Priority: &priority})

	assert.Equal(t, bson.D{
		{Key: "isDeleted", Value: false},
		{Key: "assignedTo", Value: "u1"},
		{Key: "status", Value: "done"},
		{Key: "priority", Value: "high"},
	}, query)
}

func TestBuildTaskSort(t *testing.T) {
	assert.Equal(t,
		bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		buildTaskSort(TaskSort{}))

	assert.Equal(t,
		bson.D{{Key: "dueDate", Value: 1}, {Key: "_id", Value: 1}},
		buildTaskSort(TaskSort{Field: SortByDueDate}))

	assert.Equal(t,
		bson.D{{Key: "title", Value: -1}, {Key: "_id", Value: -1}},
		buildTaskSort(ParseTaskSort("-title")))
}

func TestGroupCountPipeline(t *testing.T) {
	pipeline := groupCountPipeline("status")

	assert.Len(t, pipeline, 3)
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{{Key: "isDeleted", Value: false}}}}, pipeline[0])
	assert.Equal(t, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "isDeleted", Value: false}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}, pipeline)
}
