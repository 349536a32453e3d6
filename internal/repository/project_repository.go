package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/database"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/utils"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// projectScopeClause is the visibility predicate for non-superusers: a
// single OR over the three ownership conditions, so the scoper stays one
// indexed query instead of three unioned ones.
const projectScopeClause = "projects.owner_id = ? OR projects.created_by_id = ? OR " +
	"EXISTS (SELECT 1 FROM project_developers pd WHERE pd.project_id = projects.id AND pd.user_id = ?)"

// scoped narrows a project query to the caller's visible set. Superusers
// see everything. For everyone else the set is the union of projects they
// own, created, or develop on. When that union is empty the full table is
// returned instead. A failed membership probe aborts the query rather
// than widening it.
func (r *GormProjectRepository) scoped(caller auth.Caller) (*gorm.DB, error) {
	if caller.IsSuperuser {
		return r.db, nil
	}

	var count int64
	err := r.db.Model(&models.Project{}).
		Where(projectScopeClause, caller.UserID, caller.UserID, caller.UserID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to probe project membership: %w", err)
	}
	if count == 0 {
		return r.db, nil
	}

	return r.db.Where(projectScopeClause, caller.UserID, caller.UserID, caller.UserID), nil
}

// Create creates a project. Developer edges carried on the model are
// written in the same transaction as the row itself.
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(project).Error
	})
}

// FindByID finds a project by ID without visibility scoping
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	return findProject(r.db, id, preload)
}

// FindVisibleByID finds a project within the caller's visible set
func (r *GormProjectRepository) FindVisibleByID(caller auth.Caller, id uint64, preload ...string) (*models.Project, error) {
	query, err := r.scoped(caller)
	if err != nil {
		return nil, err
	}
	return findProject(query, id, preload)
}

func findProject(query *gorm.DB, id uint64, preload []string) (*models.Project, error) {
	for _, p := range preload {
		query = query.Preload(p)
	}

	var project models.Project
	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListVisible lists the projects the caller may see
func (r *GormProjectRepository) ListVisible(caller auth.Caller, params utils.PaginationParams) ([]models.Project, int64, error) {
	scoped, err := r.scoped(caller)
	if err != nil {
		return nil, 0, err
	}
	query := scoped.Model(&models.Project{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	err = query.
		Preload("Owner").
		Preload("CreatedBy").
		Preload("Developers").
		Order("projects.created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update persists changed project fields and, when a developer set is
// supplied, replaces the developer edges in the same transaction.
func (r *GormProjectRepository) Update(project *models.Project, developers []models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(project).Error; err != nil {
			return err
		}

		if developers != nil {
			if err := tx.Model(project).Association("Developers").Replace(developers); err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes a project, its tasks and its developer edges in one
// transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Exec("DELETE FROM project_developers WHERE project_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// ListTasks returns every task of a project regardless of task scoping
func (r *GormProjectRepository) ListTasks(projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("project_id = ?", projectID).
		Preload("Assignee").
		Preload("CreatedBy").
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
