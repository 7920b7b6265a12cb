package service

import (
	"context"
	"errors"

	"servespot/internal/http-api/models"
	"servespot/internal/http-api/repository"
)

var (
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrNotOwner            = errors.New("opportunity belongs to another organization")
)

type OpportunityService interface {
	Create(ctx context.Context, opportunity *models.Opportunity) error
	Update(ctx context.Context, organizationID string, opportunity *models.Opportunity) error
	Close(ctx context.Context, organizationID, opportunityID string) error
	Get(ctx context.Context, id string) (*models.Opportunity, error)
	List(ctx context.Context, filter repository.OpportunityFilter) ([]models.Opportunity, error)
}

type opportunityService struct {
	repo repository.OpportunityRepository
}

func NewOpportunityService(repo repository.OpportunityRepository) OpportunityService {
	return &opportunityService{repo: repo}
}

func (s *opportunityService) Create(ctx context.Context, opportunity *models.Opportunity) error {
	opportunity.Status = models.OpportunityOpen
	return s.repo.Create(ctx, opportunity)
}

func (s *opportunityService) Update(ctx context.Context, organizationID string, opportunity *models.Opportunity) error {
	existing, err := s.repo.GetByID(ctx, opportunity.ID)
	if err != nil {
		return ErrOpportunityNotFound
	}
	if existing.OrganizationID != organizationID {
		return ErrNotOwner
	}
	// edits never change ownership or open/closed state
	opportunity.OrganizationID = existing.OrganizationID
	opportunity.Status = existing.Status
	opportunity.CreatedAt = existing.CreatedAt
	return s.repo.Update(ctx, opportunity)
}

func (s *opportunityService) Close(ctx context.Context, organizationID, opportunityID string) error {
	existing, err := s.repo.GetByID(ctx, opportunityID)
	if err != nil {
		return ErrOpportunityNotFound
	}
	if existing.OrganizationID != organizationID {
		return ErrNotOwner
	}
	existing.Status = models.OpportunityClosed
	return s.repo.Update(ctx, existing)
}

func (s *opportunityService) Get(ctx context.Context, id string) (*models.Opportunity, error) {
	opportunity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrOpportunityNotFound
	}
	return opportunity, nil
}

func (s *opportunityService) List(ctx context.Context, filter repository.OpportunityFilter) ([]models.Opportunity, error) {
	return s.repo.List(ctx, filter)
}
