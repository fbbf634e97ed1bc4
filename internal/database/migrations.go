package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yukikurage/rbac-task-api/internal/models"
	"gorm.io/gorm"
)

// compositeIndexes back the listing queries, which always filter on is_deleted.
var compositeIndexes = []struct {
	name    string
	columns string
}{
	{"idx_tasks_active_assignee", "is_deleted, assigned_to"},
	{"idx_tasks_active_created", "is_deleted, created_at"},
}

// AddIndexes adds the multi-column task indexes that struct tags do not declare
func AddIndexes(db *gorm.DB, log zerolog.Logger) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(&models.Task{}, idx.name) {
			log.Debug().Str("index", idx.name).Msg("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON tasks (%s)", idx.name, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("columns", idx.columns).Msg("Created index")
	}

	return nil
}
