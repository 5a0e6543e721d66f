// Package storage provides abstractions for persistent data storage used by
// the reference billing service.
package storage

import (
	"context"

	"github.com/mmynk/invoicer/internal/models"
)

// BillFilter narrows ListBills. Empty fields match everything; matching is
// case-insensitive substring.
type BillFilter struct {
	// Query matches shop name, doctor name or invoice number.
	Query   string
	Shop    string
	Doctor  string
	Invoice string
	ShopID  string
}

// Store defines the interface for billing storage operations.
// Lookups of missing records return an error wrapping apperr.ErrNotFound.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateShop(ctx context.Context, shop *models.Shop) error
	GetShop(ctx context.Context, id string) (*models.Shop, error)
	UpdateShop(ctx context.Context, shop *models.Shop) error
	DeleteShop(ctx context.Context, id string) error
	SearchShops(ctx context.Context, query string) ([]*models.Shop, error)

	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]*models.Product, error)

	// CreateBill persists a new bill with its line items. ID, InvoiceNumber
	// and Date are populated when empty.
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, id string) (*models.Bill, error)
	ListBills(ctx context.Context, filter BillFilter) ([]*models.Bill, error)
	DeleteBill(ctx context.Context, id string) error

	// AddPayment appends a payment and re-derives the bill's status in one
	// transaction. A payment that would exceed the total is rejected with a
	// validation error.
	AddPayment(ctx context.Context, billID string, payment *models.Payment) error

	// DeletePayment removes a payment, re-derives its bill's status and
	// returns the bill ID.
	DeletePayment(ctx context.Context, paymentID string) (string, error)

	// Close releases any resources held by the store.
	Close() error
}
