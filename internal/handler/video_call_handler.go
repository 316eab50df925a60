package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"healthoasis/internal/models"
	"healthoasis/internal/service"
	"healthoasis/internal/validator"
	"healthoasis/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type VideoCallStore interface {
	Create(c *models.VideoCall) error
	EndLatest(roomID string, doctorID uint, endTime time.Time, durationSec int) (*models.VideoCall, error)
	ListByDoctor(doctorID uint, limit, offset int) ([]models.VideoCall, error)
}

type DoctorNotifier interface {
	NotifyPatientWaiting(doctorID uint, patientName, roomID string) error
	InviteDoctor(doctorEmail, patientName, patientID string) (string, error)
}

type VideoCallHandler struct {
	calls    VideoCallStore
	notifier DoctorNotifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewVideoCallHandler(calls VideoCallStore, notifier DoctorNotifier, log logrus.FieldLogger) *VideoCallHandler {
	return &VideoCallHandler{calls: calls, notifier: notifier, log: log, now: time.Now}
}

func (h *VideoCallHandler) Start(c *gin.Context) {
	var req struct {
		DoctorID  flexID    `json:"doctorId"`
		StartTime time.Time `json:"startTime"`
		RoomID    string    `json:"roomId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.DoctorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "doctorId is required"})
		return
	}
	call := &models.VideoCall{
		DoctorID:  uint(req.DoctorID),
		RoomID:    strings.TrimSpace(req.RoomID),
		Status:    models.VideoCallActive,
		StartTime: req.StartTime,
	}
	if call.RoomID == "" {
		call.RoomID = ws.DoctorRoom(call.DoctorID)
	}
	if call.StartTime.IsZero() {
		call.StartTime = h.now().UTC()
	}
	if err := h.calls.Create(call); err != nil {
		h.log.WithError(err).Error("record video call")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record call"})
		return
	}
	c.JSON(http.StatusCreated, call)
}

// End closes the latest open call. Repeated reports for the same call find
// nothing open and are acknowledged.
func (h *VideoCallHandler) End(c *gin.Context) {
	var req struct {
		DoctorID flexID    `json:"doctorId"`
		RoomID   string    `json:"roomId"`
		EndTime  time.Time `json:"endTime"`
		Duration int       `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.DoctorID == 0 && strings.TrimSpace(req.RoomID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "doctorId or roomId is required"})
		return
	}
	if req.Duration < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration cannot be negative"})
		return
	}
	if req.EndTime.IsZero() {
		req.EndTime = h.now().UTC()
	}
	call, err := h.calls.EndLatest(strings.TrimSpace(req.RoomID), uint(req.DoctorID), req.EndTime, req.Duration)
	if err != nil {
		h.log.WithError(err).Error("end video call")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end call"})
		return
	}
	if call == nil {
		c.JSON(http.StatusOK, gin.H{"message": "no active call"})
		return
	}
	c.JSON(http.StatusOK, call)
}

func (h *VideoCallHandler) Invite(c *gin.Context) {
	var req struct {
		DoctorEmail string `json:"doctorEmail"`
		PatientName string `json:"patientName"`
		PatientID   string `json:"patientId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	var v validator.Validator
	v.Check(validator.IsEmail(strings.TrimSpace(req.DoctorEmail)), "doctorEmail must be a valid email address")
	v.Check(validator.NotBlank(req.PatientName), "patientName is required")
	if v.HasErrors() {
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Error()})
		return
	}
	room, err := h.notifier.InviteDoctor(strings.TrimSpace(req.DoctorEmail), strings.TrimSpace(req.PatientName), req.PatientID)
	if h.notifyFailed(c, err) {
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Invitation sent", "roomId": room})
}

func (h *VideoCallHandler) NotifyDoctor(c *gin.Context) {
	var req struct {
		DoctorID    flexID `json:"doctorId"`
		PatientName string `json:"patientName"`
		RoomID      string `json:"roomId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.DoctorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "doctorId is required"})
		return
	}
	name := strings.TrimSpace(req.PatientName)
	if name == "" {
		name = "A patient"
	}
	err := h.notifier.NotifyPatientWaiting(uint(req.DoctorID), name, strings.TrimSpace(req.RoomID))
	if h.notifyFailed(c, err) {
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Doctor notified"})
}

// ListForDoctor runs behind DoctorAuth and SameDoctor.
func (h *VideoCallHandler) ListForDoctor(c *gin.Context) {
	id, _ := pathID(c)
	limit := queryInt(c, "limit", 20, 100)
	offset := queryInt(c, "offset", 0, 0)
	list, err := h.calls.ListByDoctor(id, limit, offset)
	if err != nil {
		h.log.WithError(err).Error("list video calls")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load calls"})
		return
	}
	if list == nil {
		list = []models.VideoCall{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *VideoCallHandler) notifyFailed(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, service.ErrDoctorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "doctor not found"})
		return true
	}
	h.log.WithError(err).Error("notify doctor")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to notify doctor"})
	return true
}
