package handler

import (
	"context"
	"errors"
	"net/http"

	"healthoasis/internal/models"
	"healthoasis/internal/service"
	"healthoasis/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FormSubmitter interface {
	BookAppointment(ctx context.Context, in service.AppointmentInput) (*models.Appointment, error)
	SendMessage(in service.MessageInput) (*models.Message, error)
}

type FormHandler struct {
	forms FormSubmitter
	log   logrus.FieldLogger
}

func NewFormHandler(forms FormSubmitter, log logrus.FieldLogger) *FormHandler {
	return &FormHandler{forms: forms, log: log}
}

func (h *FormHandler) CreateAppointment(c *gin.Context) {
	var in service.AppointmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	a, err := h.forms.BookAppointment(c.Request.Context(), in)
	if h.failed(c, err, "appointment") {
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *FormHandler) CreateMessage(c *gin.Context) {
	var in service.MessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	m, err := h.forms.SendMessage(in)
	if h.failed(c, err, "message") {
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *FormHandler) failed(c *gin.Context, err error, what string) bool {
	if err == nil {
		return false
	}
	var v validator.Validator
	if errors.As(err, &v) {
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Error(), "errors": v.Errors})
		return true
	}
	h.log.WithError(err).Error("save " + what)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save " + what})
	return true
}
