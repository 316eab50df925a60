package models

// WorkingHour is one row per weekday. Weekday follows time.Weekday (0 = Sunday).
type WorkingHour struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Weekday   int    `gorm:"uniqueIndex;not null" json:"-"`
	Day       string `gorm:"size:16;not null" json:"day"`
	OpenTime  string `gorm:"size:8" json:"open_time"`
	CloseTime string `gorm:"size:8" json:"close_time"`
	IsClosed  bool   `gorm:"not null;default:false" json:"is_closed"`
}

func (WorkingHour) TableName() string {
	return "working_hours"
}
