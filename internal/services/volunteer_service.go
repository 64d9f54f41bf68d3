package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
)

type VolunteerService struct {
	repo *repositories.Repository
}

func NewVolunteerService(repo *repositories.Repository) *VolunteerService {
	return &VolunteerService{repo: repo}
}

type ApplyRequest struct {
	Name       string
	Email      string
	Phone      string
	Department string
	Year       string
}

// Apply creates a pending volunteer application. The volunteer becomes
// eligible for internal events only once an admin approves it.
func (s *VolunteerService) Apply(req ApplyRequest) (*models.Volunteer, error) {
	email := NormalizeEmail(req.Email)

	if existing, _ := s.repo.VolunteerRepo.GetVolunteerByEmail(email); existing != nil {
		return nil, errors.New("email already has a volunteer application")
	}

	volunteer := &models.Volunteer{
		ID:                   uuid.New(),
		Name:                 req.Name,
		Email:                email,
		Phone:                req.Phone,
		Department:           req.Department,
		Year:                 req.Year,
		NSSApplicationStatus: models.ApplicationPending,
	}

	if err := s.repo.VolunteerRepo.CreateVolunteer(volunteer); err != nil {
		return nil, err
	}

	return volunteer, nil
}

func (s *VolunteerService) GetVolunteer(id string) (*models.Volunteer, error) {
	volunteer, err := s.repo.VolunteerRepo.GetVolunteerByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVolunteerNotFound
		}
		return nil, err
	}
	return volunteer, nil
}

func (s *VolunteerService) ListVolunteers(page, pageSize int, status *models.ApplicationStatus) ([]models.Volunteer, int64, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	volunteers, total, err := s.repo.VolunteerRepo.ListVolunteers(offset, pageSize, status)
	if err != nil {
		return nil, 0, 0, err
	}

	totalPages := (int(total) + pageSize - 1) / pageSize
	return volunteers, total, totalPages, nil
}

func (s *VolunteerService) ListApprovedVolunteers() ([]models.Volunteer, error) {
	return s.repo.VolunteerRepo.ListApprovedVolunteers()
}

// SetApplicationStatus approves or rejects an application.
func (s *VolunteerService) SetApplicationStatus(id string, status models.ApplicationStatus) error {
	switch status {
	case models.ApplicationApproved, models.ApplicationRejected, models.ApplicationPending:
	default:
		return errors.New("invalid application status")
	}

	if err := s.repo.VolunteerRepo.UpdateApplicationStatus(id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVolunteerNotFound
		}
		return err
	}
	return nil
}
