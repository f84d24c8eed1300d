package service

import (
	"context"
	"strings"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/internal/services/repository"
	"booking_portal_backend/internal/services/transport"
	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/logger"
)

// Currency of every catalog price.
const Currency = "XOF"

// Service provides read access to the bookable service catalog.
type Service struct {
	repo repository.Reader
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Reader, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves one active service.
func (s *Service) GetByID(ctx context.Context, id string) (transport.ServiceResponse, error) {
	svc, err := s.get(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return toResponse(svc), nil
}

// ListActive retrieves the catalog in display order.
func (s *Service) ListActive(ctx context.Context) (transport.ServiceListResponse, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return transport.ServiceListResponse{}, err
	}

	resp := transport.ServiceListResponse{
		Items: make([]transport.ServiceResponse, 0, len(items)),
		Total: len(items),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toResponse(item))
	}
	return resp, nil
}

// LookupService resolves a service for the booking wizard. Inactive services
// are reported as not found.
func (s *Service) LookupService(ctx context.Context, id string) (domain.ServiceInfo, error) {
	svc, err := s.get(ctx, id)
	if err != nil {
		return domain.ServiceInfo{}, err
	}
	return domain.ServiceInfo{ID: svc.ID, Name: svc.Name, BasePrice: svc.BasePrice}, nil
}

func (s *Service) get(ctx context.Context, id string) (repository.CatalogService, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return repository.CatalogService{}, apperr.BadRequest("service id is required")
	}

	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			s.log.WithContext(ctx).Error("catalog lookup failed", "service_id", id, "error", err)
		}
		return repository.CatalogService{}, err
	}
	if !svc.IsActive {
		return repository.CatalogService{}, apperr.NotFound("service not found")
	}
	return svc, nil
}

func toResponse(svc repository.CatalogService) transport.ServiceResponse {
	return transport.ServiceResponse{
		ID:          svc.ID,
		Name:        svc.Name,
		Description: svc.Description,
		BasePrice:   svc.BasePrice,
		Currency:    Currency,
	}
}
