package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"servespot/internal/http-api/models"
	"servespot/internal/http-api/repository"
	"servespot/internal/shared"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("already applied to this opportunity")
	ErrOpportunityClosed   = errors.New("opportunity is closed")
	ErrOpportunityFull     = errors.New("opportunity is at capacity")
	ErrInvalidTransition   = errors.New("invalid application status transition")
)

// Notifier pushes a stored notification to its recipient's live
// connections. Satisfied by *websocket.Publisher.
type Notifier interface {
	Notify(ctx context.Context, notification *models.Notification) error
}

type ApplicationService interface {
	Apply(ctx context.Context, volunteerID, opportunityID, message string) (*models.Application, error)
	UpdateStatus(ctx context.Context, organizationID, applicationID string, status models.ApplicationStatus) error
	ListForVolunteer(ctx context.Context, volunteerID string) ([]models.Application, error)
	ListForOpportunity(ctx context.Context, organizationID, opportunityID string) ([]models.Application, error)
}

type applicationService struct {
	repo            repository.ApplicationRepository
	opportunityRepo repository.OpportunityRepository
	notifier        Notifier
}

func NewApplicationService(
	repo repository.ApplicationRepository,
	opportunityRepo repository.OpportunityRepository,
	notifier Notifier,
) ApplicationService {
	return &applicationService{
		repo:            repo,
		opportunityRepo: opportunityRepo,
		notifier:        notifier,
	}
}

// Apply records a volunteer's application and notifies the organization.
func (s *applicationService) Apply(ctx context.Context, volunteerID, opportunityID, message string) (*models.Application, error) {
	opportunity, err := s.opportunityRepo.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, ErrOpportunityNotFound
	}
	if opportunity.Status != models.OpportunityOpen {
		return nil, ErrOpportunityClosed
	}

	if _, err := s.repo.FindByOpportunityAndVolunteer(ctx, opportunityID, volunteerID); err == nil {
		return nil, ErrAlreadyApplied
	}

	if opportunity.Capacity > 0 {
		count, err := s.repo.CountByOpportunity(ctx, opportunityID)
		if err != nil {
			return nil, err
		}
		if count >= int64(opportunity.Capacity) {
			return nil, ErrOpportunityFull
		}
	}

	application := &models.Application{
		OpportunityID: opportunityID,
		VolunteerID:   volunteerID,
		Message:       message,
		Status:        models.ApplicationPending,
	}
	if err := s.repo.Create(ctx, application); err != nil {
		return nil, err
	}

	// delivery failure must not fail the application itself
	if err := s.notifier.Notify(ctx, &models.Notification{
		RecipientID:   opportunity.OrganizationID,
		RecipientRole: shared.RoleOrganization,
		Title:         "New application",
		Message:       fmt.Sprintf("A volunteer applied to %q", opportunity.Title),
		Type:          "status",
		Link:          "/opportunities/" + opportunity.ID + "/applications",
	}); err != nil {
		slog.Warn("failed to notify organization of application", "error", err)
	}

	return application, nil
}

// UpdateStatus lets the owning organization accept, reject, or complete an
// application, notifying the volunteer of the outcome.
func (s *applicationService) UpdateStatus(ctx context.Context, organizationID, applicationID string, status models.ApplicationStatus) error {
	application, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return ErrApplicationNotFound
	}
	if application.Opportunity == nil || application.Opportunity.OrganizationID != organizationID {
		return ErrApplicationNotFound
	}

	if !validTransition(application.Status, status) {
		return ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, applicationID, status); err != nil {
		return err
	}

	title, notifType := statusNotification(status)
	if err := s.notifier.Notify(ctx, &models.Notification{
		RecipientID:   application.VolunteerID,
		RecipientRole: shared.RoleVolunteer,
		Title:         title,
		Message:       fmt.Sprintf("Your application to %q is now %s", application.Opportunity.Title, status),
		Type:          notifType,
		Link:          "/applications/" + application.ID,
	}); err != nil {
		slog.Warn("failed to notify volunteer of status change", "error", err)
	}

	return nil
}

func validTransition(from, to models.ApplicationStatus) bool {
	switch from {
	case models.ApplicationPending:
		return to == models.ApplicationAccepted || to == models.ApplicationRejected
	case models.ApplicationAccepted:
		return to == models.ApplicationCompleted
	default:
		return false
	}
}

func statusNotification(status models.ApplicationStatus) (title, notifType string) {
	switch status {
	case models.ApplicationCompleted:
		return "Opportunity completed", "completion"
	default:
		return "Application " + string(status), "status"
	}
}

func (s *applicationService) ListForVolunteer(ctx context.Context, volunteerID string) ([]models.Application, error) {
	return s.repo.GetByVolunteer(ctx, volunteerID)
}

func (s *applicationService) ListForOpportunity(ctx context.Context, organizationID, opportunityID string) ([]models.Application, error) {
	opportunity, err := s.opportunityRepo.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, ErrOpportunityNotFound
	}
	if opportunity.OrganizationID != organizationID {
		return nil, ErrNotOwner
	}
	return s.repo.GetByOpportunity(ctx, opportunityID)
}
