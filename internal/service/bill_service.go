// Package service implements the client's application operations on top of the
// transport client, the session store and the shared application state.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/client"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/state"
)

// BillTransport is the part of the transport client the bill flows use.
type BillTransport interface {
	CreatePayment(ctx context.Context, billID string, amount decimal.Decimal) (*models.Payment, error)
	DeletePayment(ctx context.Context, paymentID string) error
	GetBill(ctx context.Context, id string) (*models.Bill, error)
	SearchBills(ctx context.Context, query string) ([]models.Bill, error)
	ListBills(ctx context.Context, q client.BillQuery) ([]models.Bill, error)
	CreateBill(ctx context.Context, input models.BillInput) (*models.Bill, error)
	DeleteBill(ctx context.Context, id string) error
}

var _ BillTransport = (*client.Client)(nil)

// BillView is an authoritative bill together with its reconciled figures.
type BillView struct {
	Bill    models.Bill
	Summary calculator.Summary

	// Transition is the status move caused by the mutation that produced this
	// view. It is unchanged for plain refreshes.
	Transition calculator.Transition
}

// BillFilter selects bills for the home list.
type BillFilter struct {
	Status state.StatusFilter
	By     state.SearchBy
	Query  string
}

// BillService runs the bill and payment flows.
type BillService struct {
	transport BillTransport
	state     *state.Store
	logger    *slog.Logger
}

// NewBillService creates a BillService.
func NewBillService(transport BillTransport, st *state.Store, logger *slog.Logger) *BillService {
	return &BillService{
		transport: transport,
		state:     st,
		logger:    logger,
	}
}

// SubmitPayment validates amountText against bill, records it, then re-reads
// the bill and derives its status from the returned payment list.
//
// Validation failures never reach the network. If the payment is recorded but
// the re-read fails, the error is an *apperr.StaleError. If ctx is cancelled
// while a request is in flight, the late response is discarded and ctx's error
// is returned; the application state is left as it was.
func (s *BillService) SubmitPayment(ctx context.Context, bill *models.Bill, amountText string) (*BillView, error) {
	amount, err := calculator.ParseAmount(amountText)
	if err != nil {
		return nil, err
	}
	if err := calculator.ValidatePayment(bill, amount); err != nil {
		s.logger.Info("Payment rejected", "bill_id", bill.ID, "amount", amount, "reason", apperr.Reason(err))
		return nil, err
	}

	payment, err := s.transport.CreatePayment(ctx, bill.ID, amount)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	s.logger.Info("Payment recorded", "bill_id", bill.ID, "payment_id", payment.ID, "amount", amount)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("payment %s recorded, response discarded: %w", payment.ID, err)
	}

	return s.refreshAfter(ctx, bill)
}

// DeletePayment removes a payment and re-reads the bill. A payment that is
// already gone is not an error; the bill is refreshed either way. The delete
// endpoint is keyed by payment alone, so a payment that is not on bill is
// never sent.
func (s *BillService) DeletePayment(ctx context.Context, bill *models.Bill, paymentID string) (*BillView, error) {
	if _, ok := bill.FindPayment(paymentID); !ok {
		s.logger.Warn("Payment not on bill", "bill_id", bill.ID, "payment_id", paymentID)
		return s.refreshAfter(ctx, bill)
	}

	err := s.transport.DeletePayment(ctx, paymentID)
	switch {
	case err == nil:
		s.logger.Info("Payment deleted", "bill_id", bill.ID, "payment_id", paymentID)
	case apperr.IsNotFound(err):
		s.logger.Warn("Payment already deleted", "bill_id", bill.ID, "payment_id", paymentID)
	default:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to delete payment: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("payment %s deleted, response discarded: %w", paymentID, err)
	}

	return s.refreshAfter(ctx, bill)
}

// refreshAfter re-reads bill after a confirmed mutation. Failures are reported
// as stale, never as a failed mutation.
func (s *BillService) refreshAfter(ctx context.Context, before *models.Bill) (*BillView, error) {
	fresh, err := s.transport.GetBill(ctx, before.ID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn("Bill refresh failed after mutation", "bill_id", before.ID, "error", err)
		return nil, &apperr.StaleError{BillID: before.ID, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view := s.publish(fresh)
	view.Transition = calculator.StatusTransition(before, fresh)
	if view.Transition.Changed() {
		s.logger.Info("Bill status changed",
			"bill_id", fresh.ID,
			"from", view.Transition.From,
			"to", view.Transition.To,
		)
	}
	if view.Summary.Overpaid.IsPositive() {
		s.logger.Warn("Bill is overpaid", "bill_id", fresh.ID, "overpaid", view.Summary.Overpaid)
	}
	return view, nil
}

// publish reconciles fresh and stores it in the application state.
func (s *BillService) publish(fresh *models.Bill) *BillView {
	summary := calculator.Apply(fresh)
	s.state.ReplaceBill(*fresh)
	return &BillView{
		Bill:       *fresh,
		Summary:    summary,
		Transition: calculator.Transition{From: summary.Status, To: summary.Status},
	}
}

// Refresh re-reads a bill. A bill that no longer exists is dropped from the
// application state and the not-found error is returned.
func (s *BillService) Refresh(ctx context.Context, billID string) (*BillView, error) {
	fresh, err := s.transport.GetBill(ctx, billID)
	if err != nil {
		if apperr.IsNotFound(err) {
			s.state.RemoveBill(billID)
		}
		return nil, fmt.Errorf("failed to refresh bill: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.publish(fresh), nil
}

// Load fetches bills matching the filter's text query, stores the full result
// in the application state, and returns the subset matching the status filter.
func (s *BillService) Load(ctx context.Context, filter BillFilter) ([]models.Bill, error) {
	var (
		bills []models.Bill
		err   error
	)
	switch filter.By {
	case state.SearchShop:
		bills, err = s.transport.ListBills(ctx, client.BillQuery{Shop: filter.Query})
	case state.SearchDoctor:
		bills, err = s.transport.ListBills(ctx, client.BillQuery{Doctor: filter.Query})
	case state.SearchInvoice:
		bills, err = s.transport.ListBills(ctx, client.BillQuery{Invoice: filter.Query})
	default:
		bills, err = s.transport.SearchBills(ctx, filter.Query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := range bills {
		calculator.Apply(&bills[i])
	}
	s.state.SetBills(bills)

	return state.FilterBills(bills, filter.Status), nil
}

// ErrEmptyDraft is returned when creating a bill with no products selected.
var ErrEmptyDraft = apperr.Validation("no products selected")

// Create raises a bill for shop from the selected products.
func (s *BillService) Create(ctx context.Context, shop models.Shop, draft *calculator.Draft) (*BillView, error) {
	if draft == nil || draft.Len() == 0 {
		return nil, ErrEmptyDraft
	}

	input := models.BillInput{
		ShopID:      shop.ID,
		ShopName:    shop.ShopName,
		DoctorName:  shop.DoctorName,
		TotalAmount: draft.Total(),
	}
	for _, item := range draft.LineItems() {
		input.Products = append(input.Products, models.LineItemInput{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	if err := models.Validate(input); err != nil {
		return nil, err
	}

	bill, err := s.transport.CreateBill(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bill %s created, response discarded: %w", bill.ID, err)
	}

	summary := calculator.Apply(bill)
	s.state.AddBill(*bill)
	s.logger.Info("Bill created",
		"bill_id", bill.ID,
		"invoice", bill.InvoiceNumber,
		"shop", bill.ShopName,
		"total", bill.TotalAmount,
	)
	return &BillView{
		Bill:       *bill,
		Summary:    summary,
		Transition: calculator.Transition{From: summary.Status, To: summary.Status},
	}, nil
}

// Delete removes a bill. A bill that is already gone is not an error.
func (s *BillService) Delete(ctx context.Context, billID string) error {
	if err := s.transport.DeleteBill(ctx, billID); err != nil {
		if !apperr.IsNotFound(err) {
			return fmt.Errorf("failed to delete bill: %w", err)
		}
		s.logger.Warn("Bill already deleted", "bill_id", billID)
	}
	s.state.RemoveBill(billID)
	s.logger.Info("Bill deleted", "bill_id", billID)
	return nil
}

// IsDiscarded reports whether err means a response arrived after its caller
// went away.
func IsDiscarded(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
