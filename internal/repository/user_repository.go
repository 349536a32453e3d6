package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/database"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/utils"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID with optional preloading
func (r *GormUserRepository) FindByID(id uint64, preload ...string) (*models.User, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var user models.User
	if err := query.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email, the login identity field
func (r *GormUserRepository) FindByEmail(email string, preload ...string) (*models.User, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var user models.User
	if err := query.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListVisible lists the users the caller may see: the full table for
// superusers, only the caller's own row otherwise.
func (r *GormUserRepository) ListVisible(caller auth.Caller, params utils.PaginationParams) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	if !caller.IsSuperuser {
		query = query.Where("users.id = ?", caller.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.
		Preload("Roles").
		Order("users.id ASC").
		Scopes(database.Paginate(params)).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update persists changed user fields without touching role edges
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Omit(clause.Associations).Save(user).Error
}

// Delete removes a user. Ownership references are nulled rather than
// cascaded; the 1:1 worker row and membership edges go with the user.
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Project{}).Where("owner_id = ?", id).
			Update("owner_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Project{}).Where("created_by_id = ?", id).
			Update("created_by_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("assignee_id = ?", id).
			Update("assignee_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("created_by_id = ?", id).
			Update("created_by_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Worker{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_roles WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM project_developers WHERE user_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
}

// FindByIDs returns the users matching the given IDs
func (r *GormUserRepository) FindByIDs(ids []uint64) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ReplaceRoles atomically replaces the user's role set
func (r *GormUserRepository) ReplaceRoles(user *models.User, roles []models.Role) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(user).Association("Roles").Replace(roles)
	})
}

// AppendRole adds a single role edge
func (r *GormUserRepository) AppendRole(user *models.User, role models.Role) error {
	return r.db.Model(user).Association("Roles").Append(&role)
}

// RemoveRole removes a single role edge
func (r *GormUserRepository) RemoveRole(user *models.User, role models.Role) error {
	return r.db.Model(user).Association("Roles").Delete(&role)
}
