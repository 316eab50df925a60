package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationPatientWaiting = "PATIENT_WAITING"
	NotificationCallInvite     = "VIDEO_CALL_INVITE"
)

type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	DoctorID  uint           `gorm:"not null;index" json:"doctor_id"`
	Type      string         `gorm:"size:50;not null;index" json:"type"`
	Title     string         `gorm:"size:255" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Data      string         `gorm:"type:text" json:"data"` // JSON payload
	ReadAt    *time.Time     `json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
