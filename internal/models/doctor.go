package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AvailabilityAvailable = "available"
	AvailabilityBusy      = "busy"
	AvailabilityOffline   = "offline"
)

type Doctor struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	DepartmentID       *uint          `gorm:"index" json:"department_id,omitempty"`
	Name               string         `gorm:"size:120;not null" json:"name"`
	Specialization     string         `gorm:"size:120" json:"specialization"`
	Email              string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone              string         `gorm:"size:32" json:"phone"`
	ProfileImageURL    string         `gorm:"size:512" json:"profile_image_url"`
	Bio                string         `gorm:"type:text" json:"bio,omitempty"`
	Education          string         `gorm:"type:text" json:"education,omitempty"`
	Experience         string         `gorm:"size:255" json:"experience,omitempty"`
	AvailabilityStatus string         `gorm:"size:16;default:'available'" json:"availability_status"`
	PasswordHash       string         `gorm:"size:255" json:"-"`
	FCMToken           string         `gorm:"size:512" json:"-"`
	CreatedAt          time.Time      `json:"-"`
	UpdatedAt          time.Time      `json:"-"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Department *Department `gorm:"foreignKey:DepartmentID" json:"-"`
}

func (Doctor) TableName() string {
	return "doctors"
}
