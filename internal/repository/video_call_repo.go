package repository

import (
	"errors"
	"time"

	"healthoasis/internal/models"

	"gorm.io/gorm"
)

type VideoCallRepository struct {
	db *gorm.DB
}

func NewVideoCallRepository(db *gorm.DB) *VideoCallRepository {
	return &VideoCallRepository{db: db}
}

func (r *VideoCallRepository) Create(c *models.VideoCall) error {
	return r.db.Create(c).Error
}

// EndLatest closes the newest active call for roomID, or for doctorID when no
// room is given. It returns (nil, nil) when nothing is open, so repeated end
// reports are harmless.
func (r *VideoCallRepository) EndLatest(roomID string, doctorID uint, endTime time.Time, durationSec int) (*models.VideoCall, error) {
	q := r.db.Where("status = ?", models.VideoCallActive)
	switch {
	case roomID != "":
		q = q.Where("room_id = ?", roomID)
	case doctorID != 0:
		q = q.Where("doctor_id = ?", doctorID)
	default:
		return nil, nil
	}
	var c models.VideoCall
	err := q.Order("start_time DESC").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Status = models.VideoCallEnded
	c.EndTime = &endTime
	c.DurationSeconds = durationSec
	if err := r.db.Save(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *VideoCallRepository) ListByDoctor(doctorID uint, limit, offset int) ([]models.VideoCall, error) {
	var list []models.VideoCall
	err := r.db.Where("doctor_id = ?", doctorID).Order("start_time DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
