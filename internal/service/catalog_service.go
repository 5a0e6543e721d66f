package service

import (
	"context"
	"fmt"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/client"
	"github.com/mmynk/invoicer/internal/models"
)

// CatalogTransport is the part of the transport client that reads products.
type CatalogTransport interface {
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

var _ CatalogTransport = (*client.Client)(nil)

// Selection is a product ID and the quantity wanted on a new bill.
type Selection struct {
	ProductID string
	Quantity  int
}

// CatalogService reads the product catalog.
type CatalogService struct {
	transport CatalogTransport
}

func NewCatalogService(transport CatalogTransport) *CatalogService {
	return &CatalogService{transport: transport}
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	products, err := s.transport.SearchProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.transport.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// BuildDraft looks up each selected product and adds it to a new draft.
// Selecting the same product twice adds the quantities together.
func (s *CatalogService) BuildDraft(ctx context.Context, selections []Selection) (*calculator.Draft, error) {
	draft := &calculator.Draft{}
	for _, sel := range selections {
		if sel.Quantity < 1 {
			return nil, apperr.Validation(fmt.Sprintf("quantity for %s must be at least 1", sel.ProductID))
		}
		product, err := s.GetProduct(ctx, sel.ProductID)
		if err != nil {
			return nil, err
		}
		draft.AddQuantity(*product, sel.Quantity)
	}
	return draft, nil
}
