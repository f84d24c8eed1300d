package service

import (
	"context"
	"testing"

	"booking_portal_backend/internal/services/repository"
	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := repository.NewStatic([]repository.CatalogService{
		{ID: "plumber", Name: "Plomberie", BasePrice: 15000},
		{ID: "painter", Name: "Peinture", BasePrice: 10000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return New(repo, logger.Nop())
}

func TestLookupService(t *testing.T) {
	svc := newTestService(t)

	info, err := svc.LookupService(context.Background(), " plumber ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ID != "plumber" || info.BasePrice != 15000 {
		t.Fatalf("unexpected info: %+v", info)
	}

	if _, err := svc.LookupService(context.Background(), "mason"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.LookupService(context.Background(), ""); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestListActive(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 2 || resp.Items[0].ID != "plumber" || resp.Items[1].Currency != Currency {
		t.Fatalf("unexpected list: %+v", resp)
	}
}
