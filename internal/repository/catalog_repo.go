package repository

import (
	"healthoasis/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository serves the read-only portal resources.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Departments() ([]models.Department, error) {
	var list []models.Department
	err := r.db.Order("id ASC").Find(&list).Error
	return list, err
}

func (r *CatalogRepository) DepartmentBySlug(slug string) (*models.Department, error) {
	var d models.Department
	if err := r.db.Where("slug = ?", slug).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *CatalogRepository) WorkingHours() ([]models.WorkingHour, error) {
	var list []models.WorkingHour
	err := r.db.Order("weekday ASC").Find(&list).Error
	return list, err
}

func (r *CatalogRepository) WorkingHoursFor(weekday int) (*models.WorkingHour, error) {
	var h models.WorkingHour
	if err := r.db.Where("weekday = ?", weekday).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *CatalogRepository) ContactInfo() ([]models.ContactInfo, error) {
	var list []models.ContactInfo
	err := r.db.Order("id ASC").Find(&list).Error
	return list, err
}
