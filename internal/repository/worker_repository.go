package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/database"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/utils"
)

// GormWorkerRepository is a GORM implementation of WorkerRepository
type GormWorkerRepository struct {
	db *gorm.DB
}

// NewWorkerRepository creates a new WorkerRepository
func NewWorkerRepository(db *gorm.DB) WorkerRepository {
	return &GormWorkerRepository{db: db}
}

func (r *GormWorkerRepository) Create(worker *models.Worker) error {
	return r.db.Omit(clause.Associations).Create(worker).Error
}

func (r *GormWorkerRepository) FindByID(id uint64, preload ...string) (*models.Worker, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var worker models.Worker
	if err := query.First(&worker, id).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

// FindByUserID finds the worker row owned by a user
func (r *GormWorkerRepository) FindByUserID(userID uint64) (*models.Worker, error) {
	var worker models.Worker
	if err := r.db.Where("user_id = ?", userID).First(&worker).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

// ListVisible lists the workers the caller may see: everyone for
// superusers, the caller's own worker row otherwise.
func (r *GormWorkerRepository) ListVisible(caller auth.Caller, params utils.PaginationParams) ([]models.Worker, int64, error) {
	query := r.db.Model(&models.Worker{})
	if !caller.IsSuperuser {
		query = query.Where("workers.user_id = ?", caller.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var workers []models.Worker
	err := query.
		Preload("User").
		Preload("Department").
		Order("workers.id ASC").
		Scopes(database.Paginate(params)).
		Find(&workers).Error
	if err != nil {
		return nil, 0, err
	}

	return workers, total, nil
}

func (r *GormWorkerRepository) Update(worker *models.Worker) error {
	return r.db.Omit(clause.Associations).Save(worker).Error
}

func (r *GormWorkerRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Worker{}, id).Error
}
