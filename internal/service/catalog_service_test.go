package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthoasis/internal/cache"
	"healthoasis/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) Departments() ([]models.Department, error) {
	args := m.Called()
	list, _ := args.Get(0).([]models.Department)
	return list, args.Error(1)
}

func (m *MockCatalog) WorkingHours() ([]models.WorkingHour, error) {
	args := m.Called()
	list, _ := args.Get(0).([]models.WorkingHour)
	return list, args.Error(1)
}

func (m *MockCatalog) ContactInfo() ([]models.ContactInfo, error) {
	args := m.Called()
	list, _ := args.Get(0).([]models.ContactInfo)
	return list, args.Error(1)
}

type MockDoctorReader struct{ mock.Mock }

func (m *MockDoctorReader) List() ([]models.Doctor, error) {
	args := m.Called()
	list, _ := args.Get(0).([]models.Doctor)
	return list, args.Error(1)
}

func (m *MockDoctorReader) GetByID(id uint) (*models.Doctor, error) {
	args := m.Called(id)
	doc, _ := args.Get(0).(*models.Doctor)
	return doc, args.Error(1)
}

// failingStore simulates a Redis outage.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis down")
}
func (failingStore) Delete(context.Context, ...string) error { return errors.New("redis down") }

func TestCatalog_SecondReadServedFromCache(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("Departments").Return([]models.Department{{ID: 1, Name: "Cardiology", Slug: "cardiology"}}, nil).Once()

	svc := NewCatalogService(cat, new(MockDoctorReader), cache.NewMemoryStore(), time.Minute, quietLogger())
	ctx := context.Background()

	first, err := svc.Departments(ctx)
	require.NoError(t, err)
	second, err := svc.Departments(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	cat.AssertNumberOfCalls(t, "Departments", 1)
}

func TestCatalog_CacheOutageFallsBackToDB(t *testing.T) {
	cat := new(MockCatalog)
	cat.On("WorkingHours").Return([]models.WorkingHour{{Weekday: 0, Day: "Sunday", IsClosed: true}}, nil)

	svc := NewCatalogService(cat, new(MockDoctorReader), failingStore{}, time.Minute, quietLogger())
	hours, err := svc.WorkingHours(context.Background())
	require.NoError(t, err)
	require.Len(t, hours, 1)
	assert.True(t, hours[0].IsClosed)
}

func TestCatalog_DoctorNotFound(t *testing.T) {
	docs := new(MockDoctorReader)
	docs.On("GetByID", uint(42)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewCatalogService(new(MockCatalog), docs, cache.NewMemoryStore(), time.Minute, quietLogger())
	_, err := svc.Doctor(context.Background(), 42)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestCatalog_EvictDoctorForcesReload(t *testing.T) {
	docs := new(MockDoctorReader)
	docs.On("GetByID", uint(1)).Return(&models.Doctor{ID: 1, ProfileImageURL: "old"}, nil).Once()
	docs.On("GetByID", uint(1)).Return(&models.Doctor{ID: 1, ProfileImageURL: "new"}, nil).Once()

	svc := NewCatalogService(new(MockCatalog), docs, cache.NewMemoryStore(), time.Minute, quietLogger())
	ctx := context.Background()

	d, err := svc.Doctor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "old", d.ProfileImageURL)

	svc.EvictDoctor(ctx, 1)
	d, err = svc.Doctor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "new", d.ProfileImageURL)
}
