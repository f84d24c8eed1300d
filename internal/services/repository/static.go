package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"booking_portal_backend/platform/apperr"
)

// Static is an in-memory catalog loaded once from YAML.
type Static struct {
	items []CatalogService
	byID  map[string]CatalogService
}

type staticFile struct {
	Services []CatalogService `yaml:"services"`
}

// LoadStaticFile reads a catalog YAML file from disk.
func LoadStaticFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return LoadStatic(f)
}

// LoadStatic decodes a catalog of the form:
//
//	services:
//	  - id: plumber
//	    name: Plomberie
//	    basePrice: 15000
func LoadStatic(r io.Reader) (*Static, error) {
	var file staticFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewStatic(file.Services)
}

// NewStatic builds a catalog from items, rejecting blank or duplicate ids and
// negative prices. Order is kept as given.
func NewStatic(items []CatalogService) (*Static, error) {
	s := &Static{
		items: make([]CatalogService, 0, len(items)),
		byID:  make(map[string]CatalogService, len(items)),
	}
	for i, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: id is required", i)
		}
		if _, dup := s.byID[item.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, item.ID)
		}
		if item.BasePrice < 0 {
			return nil, fmt.Errorf("catalog entry %q: negative base price", item.ID)
		}
		item.IsActive = true
		item.DisplayOrder = i
		s.items = append(s.items, item)
		s.byID[item.ID] = item
	}
	return s, nil
}

// GetByID implements Reader.
func (s *Static) GetByID(_ context.Context, id string) (CatalogService, error) {
	item, ok := s.byID[id]
	if !ok {
		return CatalogService{}, apperr.NotFound(serviceNotFoundMessage)
	}
	return item, nil
}

// ListActive implements Reader.
func (s *Static) ListActive(_ context.Context) ([]CatalogService, error) {
	return append([]CatalogService(nil), s.items...), nil
}

var _ Reader = (*Static)(nil)
