package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"healthoasis/config"
	"healthoasis/internal/auth"
	"healthoasis/internal/models"
	"healthoasis/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const maxPhotoBytes = 5 << 20

type DoctorAccounts interface {
	GetByEmail(email string) (*models.Doctor, error)
	UpdateProfileImage(id uint, url string) error
	UpdateFCMToken(id uint, token string) error
	UpdateAvailability(id uint, status string) error
}

type DoctorCacheEvicter interface {
	EvictDoctor(ctx context.Context, id uint)
}

type DoctorHandler struct {
	doctors DoctorAccounts
	cache   DoctorCacheEvicter
	images  cloudinary.Uploader
	jwt     *config.JWTConfig
	log     logrus.FieldLogger
}

// NewDoctorHandler accepts a nil uploader; photo uploads then answer 503.
func NewDoctorHandler(doctors DoctorAccounts, cache DoctorCacheEvicter, images cloudinary.Uploader, jwtCfg *config.JWTConfig, log logrus.FieldLogger) *DoctorHandler {
	return &DoctorHandler{doctors: doctors, cache: cache, images: images, jwt: jwtCfg, log: log}
}

func (h *DoctorHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	doc, err := h.doctors.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		h.log.WithError(err).Error("doctor login lookup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if doc == nil || doc.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(doc.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	token, err := auth.GenerateDoctorToken(h.jwt, doc.ID, doc.Email)
	if err != nil {
		h.log.WithError(err).Error("sign doctor token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "doctor": doc})
}

func (h *DoctorHandler) UploadPhoto(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads are not configured"})
		return
	}
	id, _ := pathID(c)
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if file.Size > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file must be an image"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	url, err := h.images.UploadImage(c.Request.Context(), f, "healthoasis/doctors", fmt.Sprintf("doctor_%d", id))
	if err != nil {
		h.log.WithError(err).WithField("doctor_id", id).Error("upload doctor photo")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	if err := h.doctors.UpdateProfileImage(id, url); err != nil {
		h.log.WithError(err).WithField("doctor_id", id).Error("save doctor photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save photo"})
		return
	}
	h.cache.EvictDoctor(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"profile_image_url": url})
}

func (h *DoctorHandler) UpdateFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, _ := pathID(c)
	if err := h.doctors.UpdateFCMToken(id, strings.TrimSpace(req.Token)); err != nil {
		h.log.WithError(err).WithField("doctor_id", id).Error("save fcm token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token saved"})
}

func (h *DoctorHandler) UpdateAvailability(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	switch req.Status {
	case models.AvailabilityAvailable, models.AvailabilityBusy, models.AvailabilityOffline:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be available, busy or offline"})
		return
	}
	id, _ := pathID(c)
	if err := h.doctors.UpdateAvailability(id, req.Status); err != nil {
		h.log.WithError(err).WithField("doctor_id", id).Error("save availability")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save availability"})
		return
	}
	h.cache.EvictDoctor(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"availability_status": req.Status})
}
