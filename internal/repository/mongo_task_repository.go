package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/rbac-task-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TasksCollection is the collection that stores tasks.
const TasksCollection = "tasks"

// MongoTaskRepository is a MongoDB implementation of TaskRepository
type MongoTaskRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoTaskRepository creates a TaskRepository backed by the tasks collection of db
func NewMongoTaskRepository(db *mongo.Database) TaskRepository {
	return &MongoTaskRepository{client: db.Client(), coll: db.Collection(TasksCollection)}
}

var taskSortFields = map[SortField]string{
	SortByCreatedAt: "createdAt",
	SortByUpdatedAt: "updatedAt",
	SortByDueDate:   "dueDate",
	SortByTitle:     "title",
	SortByStatus:    "status",
	SortByPriority:  "priority",
}

// Create inserts a new task
func (r *MongoTaskRepository) Create(ctx context.Context, task *models.Task) error {
	task.AssignID()
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = task.CreatedAt

	if _, err := r.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// FindActiveByID finds a non-deleted task by ID
func (r *MongoTaskRepository) FindActiveByID(ctx context.Context, id string) (*models.Task, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	var task models.Task
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "isDeleted", Value: false}}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *MongoTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := buildTaskQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	opts := options.Find().SetSort(buildTaskSort(filter.Sort))
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find tasks: %w", err)
	}

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, 0, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, total, nil
}

// Update replaces the stored task document
func (r *MongoTaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: task.ID}}, task)
	if err != nil {
		return fmt.Errorf("replace task: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus groups non-deleted tasks by status
func (r *MongoTaskRepository) CountByStatus(ctx context.Context) ([]GroupCount, error) {
	return r.countBy(ctx, "status")
}

// CountByPriority groups non-deleted tasks by priority
func (r *MongoTaskRepository) CountByPriority(ctx context.Context) ([]GroupCount, error) {
	return r.countBy(ctx, "priority")
}

func (r *MongoTaskRepository) countBy(ctx context.Context, field string) ([]GroupCount, error) {
	cursor, err := r.coll.Aggregate(ctx, groupCountPipeline(field))
	if err != nil {
		return nil, fmt.Errorf("aggregate tasks by %s: %w", field, err)
	}

	var rows []struct {
		Group string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s counts: %w", field, err)
	}

	counts := make([]GroupCount, len(rows))
	for i, row := range rows {
		counts[i] = GroupCount{Group: row.Group, Count: row.Count}
	}
	return counts, nil
}

// Ping checks the connection to the server
func (r *MongoTaskRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func buildTaskQuery(filter TaskFilter) bson.D {
	query := bson.D{{Key: "isDeleted", Value: false}}
	if filter.AssignedTo != nil {
		query = append(query, bson.E{Key: "assignedTo", Value: *filter.AssignedTo})
	}
	if filter.Status != nil {
		query = append(query, bson.E{Key: "status", Value: string(*filter.Status)})
	}
	if filter.Priority != nil {
		query = append(query, bson.E{Key: "priority", Value: string(*filter.Priority)})
	}
	return query
}

func buildTaskSort(sort TaskSort) bson.D {
	field, ok := taskSortFields[sort.Field]
	if !ok {
		sort = DefaultTaskSort
		field = taskSortFields[sort.Field]
	}

	direction := 1
	if sort.Desc {
		direction = -1
	}
	return bson.D{{Key: field, Value: direction}, {Key: "_id", Value: direction}}
}

func groupCountPipeline(field string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "isDeleted", Value: false}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}
