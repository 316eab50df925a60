package handler

import (
	"context"
	"errors"
	"net/http"

	"healthoasis/internal/models"
	"healthoasis/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CatalogProvider interface {
	Departments(ctx context.Context) ([]models.Department, error)
	Doctors(ctx context.Context) ([]models.Doctor, error)
	Doctor(ctx context.Context, id uint) (*models.Doctor, error)
	WorkingHours(ctx context.Context) ([]models.WorkingHour, error)
	ContactInfo(ctx context.Context) ([]models.ContactInfo, error)
}

type CatalogHandler struct {
	catalog CatalogProvider
	log     logrus.FieldLogger
}

func NewCatalogHandler(catalog CatalogProvider, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

func (h *CatalogHandler) Departments(c *gin.Context) {
	list, err := h.catalog.Departments(c.Request.Context())
	respondList(h, c, list, err, "departments")
}

func (h *CatalogHandler) Doctors(c *gin.Context) {
	list, err := h.catalog.Doctors(c.Request.Context())
	respondList(h, c, list, err, "doctors")
}

func (h *CatalogHandler) Doctor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid doctor id"})
		return
	}
	doc, err := h.catalog.Doctor(c.Request.Context(), id)
	if errors.Is(err, service.ErrDoctorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "doctor not found"})
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("doctor_id", id).Error("load doctor")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load doctor"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *CatalogHandler) WorkingHours(c *gin.Context) {
	list, err := h.catalog.WorkingHours(c.Request.Context())
	respondList(h, c, list, err, "working hours")
}

func (h *CatalogHandler) ContactInfo(c *gin.Context) {
	list, err := h.catalog.ContactInfo(c.Request.Context())
	respondList(h, c, list, err, "contact info")
}

// respondList always writes a JSON array; the portal indexes into it.
func respondList[T any](h *CatalogHandler, c *gin.Context, list []T, err error, what string) {
	if err != nil {
		h.log.WithError(err).Error("load " + what)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load " + what})
		return
	}
	if list == nil {
		list = []T{}
	}
	c.JSON(http.StatusOK, list)
}
