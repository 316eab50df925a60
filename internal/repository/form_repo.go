package repository

import (
	"healthoasis/internal/models"

	"gorm.io/gorm"
)

// FormRepository stores appointment bookings and contact messages.
type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

func (r *FormRepository) CreateAppointment(a *models.Appointment) error {
	return r.db.Create(a).Error
}

func (r *FormRepository) CreateMessage(m *models.Message) error {
	return r.db.Create(m).Error
}
