package models

import "time"

// Message is a contact form submission.
type Message struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:120;not null" json:"full_name"`
	EmailAddress string    `gorm:"size:255;not null" json:"email_address"`
	Subject      string    `gorm:"size:255;not null" json:"subject"`
	MessageText  string    `gorm:"type:text;not null" json:"message_text"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
