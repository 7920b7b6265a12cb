package repository

import (
	"context"

	"gorm.io/gorm"

	"servespot/internal/http-api/models"
)

type ApplicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	GetByVolunteer(ctx context.Context, volunteerID string) ([]models.Application, error)
	GetByOpportunity(ctx context.Context, opportunityID string) ([]models.Application, error)
	CountByOpportunity(ctx context.Context, opportunityID string) (int64, error)
	FindByOpportunityAndVolunteer(ctx context.Context, opportunityID, volunteerID string) (*models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var application models.Application
	if err := r.db.WithContext(ctx).Preload("Opportunity").First(&application, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepository) GetByVolunteer(ctx context.Context, volunteerID string) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Where("volunteer_id = ?", volunteerID).
		Order("created_at DESC").
		Preload("Opportunity").
		Find(&applications).Error
	return applications, err
}

func (r *applicationRepository) GetByOpportunity(ctx context.Context, opportunityID string) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("created_at DESC").
		Preload("Volunteer").
		Find(&applications).Error
	return applications, err
}

func (r *applicationRepository) CountByOpportunity(ctx context.Context, opportunityID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("opportunity_id = ?", opportunityID).
		Count(&count).Error
	return count, err
}

func (r *applicationRepository) FindByOpportunityAndVolunteer(ctx context.Context, opportunityID, volunteerID string) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).
		Where("opportunity_id = ? AND volunteer_id = ?", opportunityID, volunteerID).
		First(&application).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", id).
		Update("status", status).Error
}
