package models

import "time"

const (
	VideoCallActive = "ACTIVE"
	VideoCallEnded  = "ENDED"
)

// VideoCall is the bookkeeping row reported by the portal; media never
// passes through the server.
type VideoCall struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	DoctorID        uint       `gorm:"index" json:"doctor_id"`
	RoomID          string     `gorm:"size:128;index" json:"room_id"`
	Status          string     `gorm:"size:16;not null;index" json:"status"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds int        `json:"duration_seconds"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (VideoCall) TableName() string {
	return "video_calls"
}
