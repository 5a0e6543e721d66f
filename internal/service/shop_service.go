package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/client"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/state"
)

// ShopTransport is the part of the transport client the shop flows use.
type ShopTransport interface {
	SearchShops(ctx context.Context, query string) ([]models.Shop, error)
	GetShop(ctx context.Context, id string) (*models.ShopDetails, error)
	CreateShop(ctx context.Context, input models.ShopInput) (*models.Shop, error)
	UpdateShop(ctx context.Context, id string, input models.ShopInput) (*models.Shop, error)
	DeleteShop(ctx context.Context, id string) error
}

var _ ShopTransport = (*client.Client)(nil)

// ShopService manages shops.
type ShopService struct {
	transport ShopTransport
	state     *state.Store
	logger    *slog.Logger
}

func NewShopService(transport ShopTransport, st *state.Store, logger *slog.Logger) *ShopService {
	return &ShopService{transport: transport, state: st, logger: logger}
}

// Search lists shops matching query and stores them in the application state.
func (s *ShopService) Search(ctx context.Context, query string) ([]models.Shop, error) {
	shops, err := s.transport.SearchShops(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search shops: %w", err)
	}
	s.state.SetShops(shops)
	return shops, nil
}

// Get returns a shop with its bills, reconciled.
func (s *ShopService) Get(ctx context.Context, id string) (*models.ShopDetails, error) {
	shop, err := s.transport.GetShop(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	for i := range shop.Bills {
		calculator.Apply(&shop.Bills[i])
	}
	return shop, nil
}

// Create validates input and creates a shop.
func (s *ShopService) Create(ctx context.Context, input models.ShopInput) (*models.Shop, error) {
	if err := models.Validate(input); err != nil {
		return nil, err
	}
	shop, err := s.transport.CreateShop(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}
	s.state.AddShop(*shop)
	s.logger.Info("Shop created", "shop_id", shop.ID, "shop", shop.ShopName)
	return shop, nil
}

// Update validates input and replaces a shop's fields.
func (s *ShopService) Update(ctx context.Context, id string, input models.ShopInput) (*models.Shop, error) {
	if err := models.Validate(input); err != nil {
		return nil, err
	}
	shop, err := s.transport.UpdateShop(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("failed to update shop: %w", err)
	}
	s.logger.Info("Shop updated", "shop_id", shop.ID)
	return shop, nil
}

// Delete removes a shop. A shop that is already gone is not an error.
func (s *ShopService) Delete(ctx context.Context, id string) error {
	if err := s.transport.DeleteShop(ctx, id); err != nil {
		if !apperr.IsNotFound(err) {
			return fmt.Errorf("failed to delete shop: %w", err)
		}
		s.logger.Warn("Shop already deleted", "shop_id", id)
	}
	s.state.RemoveShop(id)
	return nil
}
