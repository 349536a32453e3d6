package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Project indexes for the visibility scoper and sorting
		{"projects", "idx_projects_owner_id", "owner_id"},
		{"projects", "idx_projects_created_by_id", "created_by_id"},
		{"projects", "idx_projects_status", "status"},
		{"projects", "idx_projects_deadline", "deadline"},

		// Task indexes for the visibility scoper
		{"tasks", "idx_tasks_assignee_id", "assignee_id"},
		{"tasks", "idx_tasks_created_by_id", "created_by_id"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_deadline", "deadline"},

		// Membership edge indexes
		{"user_roles", "idx_user_roles_role_id", "role_id"},
		{"project_developers", "idx_project_developers_user_id", "user_id"},

		// Worker lookups by department
		{"workers", "idx_workers_department_id", "department_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
