package database

import (
	"time"

	"healthoasis/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// devDoctorPassword is only used to seed an empty development database.
const devDoctorPassword = "doctor-dev-password"

var seedDepartments = []models.Department{
	{Name: "Cardiology", Slug: "cardiology", Description: "Specialized care for heart conditions and cardiovascular health.",
		Services: []string{"Echocardiography", "Stress Testing", "Cardiac Catheterization", "Electrocardiogram (ECG)", "Heart Disease Management", "Pacemaker Implantation and Management"}},
	{Name: "Neurology", Slug: "neurology", Description: "Expert diagnosis and treatment for neurological disorders.",
		Services: []string{"EEG (Electroencephalogram)", "EMG (Electromyography)", "Stroke Treatment and Prevention", "Epilepsy Management", "Multiple Sclerosis Treatment", "Headache Clinic"}},
	{Name: "Pediatrics", Slug: "pediatrics", Description: "Comprehensive healthcare for infants, children, and adolescents.",
		Services: []string{"Well-Child Visits", "Vaccinations", "Developmental Screening", "Pediatric Infectious Disease Management", "Child Nutrition Counseling", "Adolescent Medicine"}},
	{Name: "Orthopedics", Slug: "orthopedics", Description: "Treatment of bones, joints, ligaments, tendons and muscles.",
		Services: []string{"Joint Replacement", "Sports Medicine", "Fracture Care", "Spine Surgery", "Physical Therapy"}},
	{Name: "Ophthalmology", Slug: "ophthalmology", Description: "Complete eye care from routine exams to surgery.",
		Services: []string{"Comprehensive Eye Exams", "Cataract Surgery", "Glaucoma Treatment", "Retina Care"}},
	{Name: "General Medicine", Slug: "general-medicine", Description: "Primary care for adults and everyday health concerns.",
		Services: []string{"Annual Checkups", "Chronic Disease Management", "Preventive Care", "Lab Tests"}},
}

var seedHours = []models.WorkingHour{
	{Weekday: int(time.Sunday), Day: "Sunday", IsClosed: true},
	{Weekday: int(time.Monday), Day: "Monday", OpenTime: "08:00:00", CloseTime: "20:00:00"},
	{Weekday: int(time.Tuesday), Day: "Tuesday", OpenTime: "08:00:00", CloseTime: "20:00:00"},
	{Weekday: int(time.Wednesday), Day: "Wednesday", OpenTime: "08:00:00", CloseTime: "20:00:00"},
	{Weekday: int(time.Thursday), Day: "Thursday", OpenTime: "08:00:00", CloseTime: "20:00:00"},
	{Weekday: int(time.Friday), Day: "Friday", OpenTime: "08:00:00", CloseTime: "20:00:00"},
	{Weekday: int(time.Saturday), Day: "Saturday", OpenTime: "09:00:00", CloseTime: "17:00:00"},
}

// Seed fills an empty database with the portal's reference data. Tables that
// already hold rows are left alone.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Department{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Create(&seedDepartments).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&models.WorkingHour{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Create(&seedHours).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&models.ContactInfo{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		info := models.ContactInfo{
			PhoneMain:      "+91 11 4000 1000",
			PhoneEmergency: "+91 11 4000 1111",
			Email:          "info@healthoasis.local",
			EmailSupport:   "support@healthoasis.local",
			Address:        "12 Wellness Avenue",
			City:           "New Delhi",
		}
		if err := db.Create(&info).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&models.Doctor{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return seedDoctors(db)
	}
	return nil
}

func seedDoctors(db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(devDoctorPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	var depts []models.Department
	if err := db.Order("id").Find(&depts).Error; err != nil {
		return err
	}
	bySlug := make(map[string]uint, len(depts))
	for _, d := range depts {
		bySlug[d.Slug] = d.ID
	}
	deptID := func(slug string) *uint {
		id, ok := bySlug[slug]
		if !ok {
			return nil
		}
		return &id
	}
	doctors := []models.Doctor{
		{Name: "Anita Sharma", Specialization: "Cardiologist", Email: "anita.sharma@healthoasis.local", Phone: "+91 98100 00001",
			Experience: "15 years", Education: "MBBS, MD (Cardiology)", DepartmentID: deptID("cardiology")},
		{Name: "Rohan Mehta", Specialization: "Neurologist", Email: "rohan.mehta@healthoasis.local", Phone: "+91 98100 00002",
			Experience: "11 years", Education: "MBBS, DM (Neurology)", DepartmentID: deptID("neurology")},
		{Name: "Priya Nair", Specialization: "Pediatrician", Email: "priya.nair@healthoasis.local", Phone: "+91 98100 00003",
			Experience: "9 years", Education: "MBBS, MD (Pediatrics)", DepartmentID: deptID("pediatrics")},
		{Name: "Vikram Singh", Specialization: "Orthopedic Surgeon", Email: "vikram.singh@healthoasis.local", Phone: "+91 98100 00004",
			Experience: "18 years", Education: "MBBS, MS (Orthopedics)", DepartmentID: deptID("orthopedics")},
	}
	for i := range doctors {
		doctors[i].PasswordHash = string(hash)
		doctors[i].AvailabilityStatus = models.AvailabilityAvailable
	}
	if err := db.Create(&doctors).Error; err != nil {
		return err
	}
	logrus.WithField("count", len(doctors)).Warn("seeded doctors with the development password; rotate before production use")
	return nil
}
