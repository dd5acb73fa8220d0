// Package meds manages the medication catalog drones deliver from.
package meds

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"droneMedicalDelivery/internal/apperr"
	"droneMedicalDelivery/internal/audit"
	"droneMedicalDelivery/models"
	"droneMedicalDelivery/repository"
)

var (
	namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	codePattern = regexp.MustCompile(`^[A-Z0-9_]+$`)
)

type Service struct {
	meds   repository.MedicationRepositoryI
	sink   audit.Sink
	logger *zap.Logger
}

func NewService(meds repository.MedicationRepositoryI, sink audit.Sink, logger *zap.Logger) *Service {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Service{meds: meds, sink: sink, logger: logger}
}

// CreateInput describes a medication to add to the catalog.
type CreateInput struct {
	Name         string
	Code         string
	Weight       float64
	Type         models.MedicationType
	Description  string
	ImageURL     string
	Manufacturer string
}

// Create validates and stores a new medication. The code is uppercased
// before the uniqueness check so "med_1" and "MED_1" collide.
func (s *Service) Create(ctx context.Context, in CreateInput, actor audit.Actor) (*models.Medication, error) {
	if in.Name == "" || !namePattern.MatchString(in.Name) {
		return nil, apperr.Invalidf("Medication name can only contain letters, numbers, hyphens and underscores")
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" || !codePattern.MatchString(code) {
		return nil, apperr.Invalidf("Medication code can only contain uppercase letters, numbers and underscores")
	}
	if in.Weight <= 0 {
		return nil, apperr.Invalidf("Medication weight must be positive")
	}
	switch in.Type {
	case "", models.MedicationTypeMedication, models.MedicationTypeMedicalSupplies, models.MedicationTypeOther:
	default:
		return nil, apperr.Invalidf("Unknown medication type: %s", in.Type)
	}

	existing, err := s.meds.GetByCode(ctx, code)
	if err != nil {
		return nil, apperr.System(err)
	}
	if existing != nil {
		return nil, apperr.Conflictf("Medication with this code already exists")
	}

	med, err := s.meds.Create(ctx, &models.Medication{
		Name:         in.Name,
		Code:         code,
		Weight:       in.Weight,
		Type:         in.Type,
		Description:  in.Description,
		ImageURL:     in.ImageURL,
		Manufacturer: in.Manufacturer,
		IsActive:     true,
	})
	if err != nil {
		return nil, apperr.System(err)
	}

	s.sink.Emit(ctx, audit.Event{
		Action:      "MEDICATION_CREATE",
		Description: "Medication " + med.Code + " created",
		ActionData:  map[string]any{"code": med.Code, "weight": med.Weight},
		Identity:    actor.Identity(),
		Owner:       actor.Owner(),
		What:        "/medications",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return med, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Medication, error) {
	med, err := s.meds.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.System(err)
	}
	if med == nil {
		return nil, apperr.NotFoundf("Medication with ID %s not found", id)
	}
	return med, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*models.Medication, error) {
	med, err := s.meds.GetByCode(ctx, code)
	if err != nil {
		return nil, apperr.System(err)
	}
	if med == nil {
		return nil, apperr.NotFoundf("Medication with code %s not found", strings.ToUpper(code))
	}
	return med, nil
}

// List returns the active catalog; with a non-empty term it searches by
// name or code substring instead.
func (s *Service) List(ctx context.Context, term string) ([]models.Medication, error) {
	var (
		out []models.Medication
		err error
	)
	if term == "" {
		out, err = s.meds.ListActive(ctx)
	} else {
		out, err = s.meds.Search(ctx, term)
	}
	if err != nil {
		return nil, apperr.System(err)
	}
	return out, nil
}

// Deactivate soft-deletes a medication. Existing load rows keep their
// reference; the item just stops being loadable.
func (s *Service) Deactivate(ctx context.Context, id string, actor audit.Actor) error {
	med, err := s.meds.GetByID(ctx, id)
	if err != nil {
		return apperr.System(err)
	}
	if med == nil {
		return apperr.NotFoundf("Medication with ID %s not found", id)
	}
	if err := s.meds.Deactivate(ctx, med.ID); err != nil {
		return apperr.System(err)
	}
	s.sink.Emit(ctx, audit.Event{
		Action:      "MEDICATION_DELETE",
		Description: "Medication " + med.Code + " deactivated",
		Identity:    actor.Identity(),
		Owner:       actor.Owner(),
		What:        "/medications/" + med.ID,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return nil
}
