package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthoasis/internal/cache"
	"healthoasis/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	keyDepartments  = "catalog:departments"
	keyDoctors      = "catalog:doctors"
	keyWorkingHours = "catalog:working-hours"
	keyContactInfo  = "catalog:contact-info"
)

func doctorKey(id uint) string { return fmt.Sprintf("catalog:doctor:%d", id) }

type CatalogReader interface {
	Departments() ([]models.Department, error)
	WorkingHours() ([]models.WorkingHour, error)
	ContactInfo() ([]models.ContactInfo, error)
}

type DoctorReader interface {
	List() ([]models.Doctor, error)
	GetByID(id uint) (*models.Doctor, error)
}

// CatalogService serves the read-only portal resources through a cache.
// Cache failures are logged and fall through to the database.
type CatalogService struct {
	catalog CatalogReader
	doctors DoctorReader
	cache   cache.Store
	ttl     time.Duration
	log     logrus.FieldLogger
}

func NewCatalogService(catalog CatalogReader, doctors DoctorReader, store cache.Store, ttl time.Duration, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{catalog: catalog, doctors: doctors, cache: store, ttl: ttl, log: log}
}

func (s *CatalogService) Departments(ctx context.Context) ([]models.Department, error) {
	return readThrough(ctx, s, keyDepartments, s.catalog.Departments)
}

func (s *CatalogService) Doctors(ctx context.Context) ([]models.Doctor, error) {
	return readThrough(ctx, s, keyDoctors, s.doctors.List)
}

func (s *CatalogService) Doctor(ctx context.Context, id uint) (*models.Doctor, error) {
	doc, err := readThrough(ctx, s, doctorKey(id), func() (*models.Doctor, error) {
		return s.doctors.GetByID(id)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDoctorNotFound
	}
	return doc, err
}

func (s *CatalogService) WorkingHours(ctx context.Context) ([]models.WorkingHour, error) {
	return readThrough(ctx, s, keyWorkingHours, s.catalog.WorkingHours)
}

func (s *CatalogService) ContactInfo(ctx context.Context) ([]models.ContactInfo, error) {
	return readThrough(ctx, s, keyContactInfo, s.catalog.ContactInfo)
}

// EvictDoctor drops the cached list and the single doctor record.
func (s *CatalogService) EvictDoctor(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, keyDoctors, doctorKey(id)); err != nil {
		s.log.WithError(err).WithField("doctor_id", id).Warn("cache evict failed")
	}
}

func readThrough[T any](ctx context.Context, s *CatalogService, key string, load func() (T, error)) (T, error) {
	var out T
	hit, err := cache.GetJSON(ctx, s.cache, key, &out)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if hit {
		return out, nil
	}

	out, err = load()
	if err != nil {
		return out, err
	}
	if err := cache.SetJSON(ctx, s.cache, key, out, s.ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return out, nil
}
