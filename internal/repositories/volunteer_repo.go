package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gitbyjay25/nss-portal-backend/internal/models"
)

type volunteerRepo struct {
	db *gorm.DB
}

func NewVolunteerRepository(db *gorm.DB) VolunteerRepository {
	return &volunteerRepo{db: db}
}

func (r *volunteerRepo) CreateVolunteer(volunteer *models.Volunteer) error {
	return r.db.Create(volunteer).Error
}

func (r *volunteerRepo) GetVolunteerByID(id string) (*models.Volunteer, error) {
	var volunteer models.Volunteer
	if err := r.db.Where("id = ?", id).First(&volunteer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("volunteer %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get volunteer: %w", err)
	}
	return &volunteer, nil
}

func (r *volunteerRepo) GetVolunteerByEmail(email string) (*models.Volunteer, error) {
	var volunteer models.Volunteer
	if err := r.db.Where("email = ?", email).First(&volunteer).Error; err != nil {
		return nil, err
	}
	return &volunteer, nil
}

func (r *volunteerRepo) ListVolunteers(offset, limit int, status *models.ApplicationStatus) ([]models.Volunteer, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var volunteers []models.Volunteer
	var total int64

	query := r.db.Model(&models.Volunteer{})
	if status != nil {
		query = query.Where("nss_application_status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count volunteers: %w", err)
	}

	if err := query.
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&volunteers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list volunteers: %w", err)
	}

	return volunteers, total, nil
}

// ListApprovedVolunteers returns the roster the analytics aggregator runs
// over, ordered by name for stable output.
func (r *volunteerRepo) ListApprovedVolunteers() ([]models.Volunteer, error) {
	var volunteers []models.Volunteer
	if err := r.db.
		Where("nss_application_status = ?", models.ApplicationApproved).
		Order("name ASC").
		Find(&volunteers).Error; err != nil {
		return nil, fmt.Errorf("failed to list approved volunteers: %w", err)
	}
	return volunteers, nil
}

func (r *volunteerRepo) UpdateApplicationStatus(id string, status models.ApplicationStatus) error {
	result := r.db.Model(&models.Volunteer{}).
		Where("id = ?", id).
		Update("nss_application_status", status)

	if result.Error != nil {
		return fmt.Errorf("failed to update application status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("volunteer %s: %w", id, gorm.ErrRecordNotFound)
	}

	return nil
}
