package repository

import (
	"healthoasis/internal/models"

	"gorm.io/gorm"
)

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

func (r *DoctorRepository) List() ([]models.Doctor, error) {
	var list []models.Doctor
	err := r.db.Order("id ASC").Find(&list).Error
	return list, err
}

func (r *DoctorRepository) GetByID(id uint) (*models.Doctor, error) {
	var d models.Doctor
	if err := r.db.First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DoctorRepository) GetByEmail(email string) (*models.Doctor, error) {
	var d models.Doctor
	if err := r.db.Where("email = ?", email).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DoctorRepository) UpdateProfileImage(id uint, url string) error {
	return r.db.Model(&models.Doctor{}).Where("id = ?", id).Update("profile_image_url", url).Error
}

func (r *DoctorRepository) UpdateFCMToken(id uint, token string) error {
	return r.db.Model(&models.Doctor{}).Where("id = ?", id).Update("fcm_token", token).Error
}

func (r *DoctorRepository) UpdateAvailability(id uint, status string) error {
	return r.db.Model(&models.Doctor{}).Where("id = ?", id).Update("availability_status", status).Error
}
