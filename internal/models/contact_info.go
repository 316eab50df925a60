package models

type ContactInfo struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	PhoneMain      string `gorm:"size:32" json:"phone_main"`
	PhoneEmergency string `gorm:"size:32" json:"phone_emergency"`
	Email          string `gorm:"size:255" json:"email"`
	EmailSupport   string `gorm:"size:255" json:"email_support"`
	Address        string `gorm:"size:255" json:"address"`
	City           string `gorm:"size:120" json:"city"`
	MapURL         string `gorm:"size:512" json:"map_url,omitempty"`
}

func (ContactInfo) TableName() string {
	return "contact_info"
}
