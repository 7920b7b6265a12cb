package repository

import (
	"context"

	"gorm.io/gorm"

	"servespot/internal/http-api/models"
)

// OpportunityFilter narrows opportunity listings; zero values mean "any".
type OpportunityFilter struct {
	Category       string
	Location       string
	OrganizationID string
	Status         models.OpportunityStatus
}

type OpportunityRepository interface {
	Create(ctx context.Context, opportunity *models.Opportunity) error
	Update(ctx context.Context, opportunity *models.Opportunity) error
	GetByID(ctx context.Context, id string) (*models.Opportunity, error)
	List(ctx context.Context, filter OpportunityFilter) ([]models.Opportunity, error)
}

type opportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

func (r *opportunityRepository) Create(ctx context.Context, opportunity *models.Opportunity) error {
	return r.db.WithContext(ctx).Create(opportunity).Error
}

func (r *opportunityRepository) Update(ctx context.Context, opportunity *models.Opportunity) error {
	return r.db.WithContext(ctx).Save(opportunity).Error
}

func (r *opportunityRepository) GetByID(ctx context.Context, id string) (*models.Opportunity, error) {
	var opportunity models.Opportunity
	if err := r.db.WithContext(ctx).First(&opportunity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &opportunity, nil
}

func (r *opportunityRepository) List(ctx context.Context, filter OpportunityFilter) ([]models.Opportunity, error) {
	q := r.db.WithContext(ctx).Model(&models.Opportunity{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	if filter.OrganizationID != "" {
		q = q.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var opportunities []models.Opportunity
	err := q.Order("created_at DESC").Find(&opportunities).Error
	return opportunities, err
}
