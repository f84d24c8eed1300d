package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"booking_portal_backend/platform/apperr"
)

const serviceNotFoundMessage = "service not found"

// Repo implements Reader with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Reader.
var _ Reader = (*Repo)(nil)

// GetByID retrieves an active catalog service by its ID.
func (r *Repo) GetByID(ctx context.Context, id string) (CatalogService, error) {
	query := `
		SELECT id, name, description, base_price, is_active, display_order
		FROM service_catalog
		WHERE id = $1 AND is_active`

	var svc CatalogService
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID, &svc.Name, &svc.Description, &svc.BasePrice, &svc.IsActive, &svc.DisplayOrder,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CatalogService{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return CatalogService{}, fmt.Errorf("get catalog service by id: %w", err)
	}

	return svc, nil
}

// ListActive retrieves active catalog services in display order.
func (r *Repo) ListActive(ctx context.Context) ([]CatalogService, error) {
	query := `
		SELECT id, name, description, base_price, is_active, display_order
		FROM service_catalog
		WHERE is_active
		ORDER BY display_order ASC, name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list catalog services: %w", err)
	}
	defer rows.Close()

	return scanCatalogServices(rows)
}

func scanCatalogServices(rows pgx.Rows) ([]CatalogService, error) {
	results := make([]CatalogService, 0)

	for rows.Next() {
		var svc CatalogService
		err := rows.Scan(
			&svc.ID, &svc.Name, &svc.Description, &svc.BasePrice, &svc.IsActive, &svc.DisplayOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("scan catalog service: %w", err)
		}
		results = append(results, svc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog services: %w", err)
	}

	return results, nil
}
