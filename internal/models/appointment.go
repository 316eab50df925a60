package models

import (
	"time"

	"gorm.io/gorm"
)

type Appointment struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	AppointmentDate string         `gorm:"size:10;not null;index" json:"appointment_date"` // YYYY-MM-DD
	AppointmentTime string         `gorm:"size:8;not null" json:"appointment_time"`        // HH:MM:SS
	FullName        string         `gorm:"column:fullname;size:120;not null" json:"fullname"`
	Email           string         `gorm:"size:255;not null;index" json:"email"`
	Phone           string         `gorm:"size:32;not null" json:"phone"`
	Message         string         `gorm:"type:text" json:"message"`
	Department      string         `gorm:"size:120;not null" json:"department"`
	Status          string         `gorm:"size:20;default:'BOOKED'" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Appointment) TableName() string {
	return "appointments"
}
