package repository

import (
	"gorm.io/gorm"

	"github.com/teampulse/project-management-api/internal/database"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/utils"
)

// GormDepartmentRepository is a GORM implementation of DepartmentRepository
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository creates a new DepartmentRepository
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

func (r *GormDepartmentRepository) Create(department *models.Department) error {
	return r.db.Create(department).Error
}

func (r *GormDepartmentRepository) FindByID(id uint64, preload ...string) (*models.Department, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var department models.Department
	if err := query.First(&department, id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *GormDepartmentRepository) List(params utils.PaginationParams) ([]models.Department, int64, error) {
	var total int64
	if err := r.db.Model(&models.Department{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var departments []models.Department
	err := r.db.
		Order("departments.id ASC").
		Scopes(database.Paginate(params)).
		Find(&departments).Error
	if err != nil {
		return nil, 0, err
	}

	return departments, total, nil
}

func (r *GormDepartmentRepository) Update(department *models.Department) error {
	return r.db.Save(department).Error
}

// Delete removes a department. Workers are kept; their department
// reference is nulled in the same transaction.
func (r *GormDepartmentRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Worker{}).Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Department{}, id).Error
	})
}
