package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/client"
	"github.com/mmynk/invoicer/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeBilling is an in-memory stand-in for the remote billing service.
// It records the order of calls so tests can assert on sequencing.
type fakeBilling struct {
	mu     sync.Mutex
	bills  map[string]*models.Bill
	calls  []string
	nextID int

	createErr error
	deleteErr error
	getErr    error

	// afterCreate runs once the payment is stored, before CreatePayment returns.
	afterCreate func()
}

func newFakeBilling(bills ...*models.Bill) *fakeBilling {
	f := &fakeBilling{bills: map[string]*models.Bill{}}
	for _, b := range bills {
		cp := *b
		cp.Payments = append([]models.Payment(nil), b.Payments...)
		f.bills[b.ID] = &cp
	}
	return f
}

func (f *fakeBilling) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBilling) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBilling) CreatePayment(ctx context.Context, billID string, amount decimal.Decimal) (*models.Payment, error) {
	f.record("CreatePayment")
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.mu.Lock()
	b, ok := f.bills[billID]
	if !ok {
		f.mu.Unlock()
		return nil, fmt.Errorf("bill %s: %w", billID, apperr.ErrNotFound)
	}
	f.nextID++
	p := models.Payment{ID: fmt.Sprintf("pay-%d", f.nextID), Amount: amount}
	b.Payments = append(b.Payments, p)
	f.mu.Unlock()

	if f.afterCreate != nil {
		f.afterCreate()
	}
	return &p, nil
}

func (f *fakeBilling) DeletePayment(ctx context.Context, paymentID string) error {
	f.record("DeletePayment")
	if f.deleteErr != nil {
		return f.deleteErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bills {
		for i, p := range b.Payments {
			if p.ID == paymentID {
				b.Payments = append(b.Payments[:i:i], b.Payments[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("payment %s: %w", paymentID, apperr.ErrNotFound)
}

func (f *fakeBilling) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	f.record("GetBill")
	if f.getErr != nil {
		return nil, f.getErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bills[id]
	if !ok {
		return nil, fmt.Errorf("bill %s: %w", id, apperr.ErrNotFound)
	}
	cp := *b
	cp.Payments = append([]models.Payment(nil), b.Payments...)
	// The fake never updates Status; clients must derive it.
	return &cp, nil
}

func (f *fakeBilling) all() []models.Bill {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Bill
	for _, b := range f.bills {
		out = append(out, *b)
	}
	return out
}

func (f *fakeBilling) SearchBills(ctx context.Context, query string) ([]models.Bill, error) {
	f.record("SearchBills")
	var out []models.Bill
	for _, b := range f.all() {
		if query == "" || strings.Contains(b.ShopName+b.DoctorName+b.InvoiceNumber, query) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBilling) ListBills(ctx context.Context, q client.BillQuery) ([]models.Bill, error) {
	f.record("ListBills")
	var out []models.Bill
	for _, b := range f.all() {
		if strings.Contains(b.ShopName, q.Shop) && strings.Contains(b.DoctorName, q.Doctor) && strings.Contains(b.InvoiceNumber, q.Invoice) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBilling) CreateBill(ctx context.Context, input models.BillInput) (*models.Bill, error) {
	f.record("CreateBill")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b := &models.Bill{
		ID:            fmt.Sprintf("bill-%d", f.nextID),
		InvoiceNumber: fmt.Sprintf("INV-%d", f.nextID),
		ShopID:        input.ShopID,
		ShopName:      input.ShopName,
		DoctorName:    input.DoctorName,
		TotalAmount:   input.TotalAmount,
		Status:        models.BillStatusUnpaid,
	}
	for _, p := range input.Products {
		b.Products = append(b.Products, models.LineItem{ProductID: p.ProductID, Name: p.Name, Price: p.Price, Quantity: p.Quantity})
	}
	f.bills[b.ID] = b
	cp := *b
	return &cp, nil
}

func (f *fakeBilling) DeleteBill(ctx context.Context, id string) error {
	f.record("DeleteBill")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bills[id]; !ok {
		return fmt.Errorf("bill %s: %w", id, apperr.ErrNotFound)
	}
	delete(f.bills, id)
	return nil
}

// fakeCatalog serves a fixed product list.
type fakeCatalog struct {
	products map[string]models.Product
}

func (f *fakeCatalog) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	return &p, nil
}

// fakeAuth answers Login and Me.
type fakeAuth struct {
	calls  int
	result *models.LoginResult
	err    error
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAuth) Me(ctx context.Context) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u := f.result.User
	return &u, nil
}

// fakeShops records shop calls.
type fakeShops struct {
	calls     int
	deleteErr error
}

func (f *fakeShops) SearchShops(ctx context.Context, query string) ([]models.Shop, error) {
	f.calls++
	return []models.Shop{{ID: "s1", ShopName: "Green Pharmacy"}}, nil
}

func (f *fakeShops) GetShop(ctx context.Context, id string) (*models.ShopDetails, error) {
	f.calls++
	return &models.ShopDetails{
		Shop:  models.Shop{ID: id},
		Bills: []models.Bill{{ID: "b1", TotalAmount: d("10"), Payments: []models.Payment{{ID: "p1", Amount: d("10")}}}},
	}, nil
}

func (f *fakeShops) CreateShop(ctx context.Context, input models.ShopInput) (*models.Shop, error) {
	f.calls++
	return &models.Shop{ID: "s-new", ShopName: input.ShopName, DoctorName: input.DoctorName, Location: input.Location, ContactNumber: input.ContactNumber}, nil
}

func (f *fakeShops) UpdateShop(ctx context.Context, id string, input models.ShopInput) (*models.Shop, error) {
	f.calls++
	return &models.Shop{ID: id, ShopName: input.ShopName}, nil
}

func (f *fakeShops) DeleteShop(ctx context.Context, id string) error {
	f.calls++
	return f.deleteErr
}
