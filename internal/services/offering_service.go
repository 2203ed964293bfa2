package services

import (
	"context"
	"strings"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
)

type OfferingService struct {
	offeringRepo *repository.OfferingRepository
}

func NewOfferingService(offeringRepo *repository.OfferingRepository) *OfferingService {
	return &OfferingService{offeringRepo: offeringRepo}
}

func (s *OfferingService) CreateOffering(
	ctx context.Context,
	input repository.CreateOfferingInput,
) (*models.SessionOffering, error) {
	if input.InstructorID <= 0 || strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidInput
	}
	if input.DurationMinutes <= 0 || input.BasePrice < 0 || len(input.Currency) != 3 {
		return nil, ErrInvalidInput
	}
	switch input.SessionType {
	case models.SessionTypeIndividual:
		// Individual offerings are always exclusive.
		input.Capacity = 1
	case models.SessionTypeGroup:
		if input.Capacity < 1 {
			return nil, ErrInvalidInput
		}
	default:
		return nil, ErrInvalidInput
	}
	switch input.TopicType {
	case models.TopicTypeFixed, models.TopicTypeFlexible:
	default:
		return nil, ErrInvalidInput
	}
	switch input.Format {
	case models.SessionFormatOnline, models.SessionFormatOffline, models.SessionFormatHybrid:
	default:
		return nil, ErrInvalidInput
	}
	switch input.CancellationPolicy {
	case models.CancellationFlexible, models.CancellationModerate, models.CancellationStrict:
	case "":
		input.CancellationPolicy = models.CancellationModerate
	default:
		return nil, ErrInvalidInput
	}
	return s.offeringRepo.Create(ctx, input)
}

func (s *OfferingService) UpdateOffering(
	ctx context.Context,
	id int64,
	input repository.UpdateOfferingInput,
) (*models.SessionOffering, error) {
	if strings.TrimSpace(input.Title) == "" || input.DurationMinutes <= 0 || input.BasePrice < 0 {
		return nil, ErrInvalidInput
	}
	return s.offeringRepo.Update(ctx, id, input)
}

func (s *OfferingService) DeactivateOffering(ctx context.Context, id int64) (*models.SessionOffering, error) {
	return s.offeringRepo.Deactivate(ctx, id)
}

func (s *OfferingService) ListOfferings(
	ctx context.Context,
	filter repository.OfferingListFilter,
) ([]models.SessionOffering, error) {
	return s.offeringRepo.List(ctx, filter)
}

// GetOffering returns the offering with its aggregates recomputed from
// bookings and sessions.
func (s *OfferingService) GetOffering(ctx context.Context, id int64) (*models.OfferingDetail, error) {
	offering, err := s.offeringRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	totals, err := s.offeringRepo.Totals(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.OfferingDetail{SessionOffering: *offering, Totals: *totals}, nil
}
