package repository

import (
	"healthoasis/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *NotificationRepository) ListByDoctorID(doctorID uint, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.Where("doctor_id = ?", doctorID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// MarkRead reports false when the notification does not belong to doctorID.
func (r *NotificationRepository) MarkRead(id, doctorID uint) (bool, error) {
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		Update("read_at", gorm.Expr("COALESCE(read_at, NOW())"))
	return res.RowsAffected > 0, res.Error
}
