package handler

import (
	"net/http"
	"strconv"

	"healthoasis/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type NotificationStore interface {
	ListByDoctorID(doctorID uint, limit, offset int) ([]models.Notification, error)
	MarkRead(id, doctorID uint) (bool, error)
}

// NotificationHandler serves a doctor's own notifications. Routes run behind
// DoctorAuth and SameDoctor.
type NotificationHandler struct {
	store NotificationStore
	log   logrus.FieldLogger
}

func NewNotificationHandler(store NotificationStore, log logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{store: store, log: log}
}

func (h *NotificationHandler) List(c *gin.Context) {
	doctorID, _ := pathID(c)
	limit := queryInt(c, "limit", 20, 100)
	offset := queryInt(c, "offset", 0, 0)
	list, err := h.store.ListByDoctorID(doctorID, limit, offset)
	if err != nil {
		h.log.WithError(err).WithField("doctor_id", doctorID).Error("list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	doctorID, _ := pathID(c)
	id, err := strconv.ParseUint(c.Param("notificationId"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	found, err := h.store.MarkRead(uint(id), doctorID)
	if err != nil {
		h.log.WithError(err).Error("mark notification read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
