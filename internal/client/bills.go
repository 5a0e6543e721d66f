package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/models"
)

// BillQuery narrows ListBills. Empty fields are ignored.
type BillQuery struct {
	Shop    string
	Doctor  string
	Invoice string
}

func (q BillQuery) values() url.Values {
	v := url.Values{}
	if q.Shop != "" {
		v.Set("shop", q.Shop)
	}
	if q.Doctor != "" {
		v.Set("doctor", q.Doctor)
	}
	if q.Invoice != "" {
		v.Set("invoice", q.Invoice)
	}
	return v
}

// SearchBills lists bills whose shop, doctor or invoice number contains query.
func (c *Client) SearchBills(ctx context.Context, query string) ([]models.Bill, error) {
	var bills []models.Bill
	_, err := c.do(ctx, call{
		op:     "bills.search",
		method: http.MethodGet,
		path:   "/bills/search",
		query:  url.Values{"query": {query}},
	}, &bills)
	return bills, err
}

// ListBills lists bills matching every non-empty field of q.
func (c *Client) ListBills(ctx context.Context, q BillQuery) ([]models.Bill, error) {
	var bills []models.Bill
	_, err := c.do(ctx, call{
		op:     "bills.list",
		method: http.MethodGet,
		path:   "/bills",
		query:  q.values(),
	}, &bills)
	return bills, err
}

// GetBill fetches the authoritative copy of a bill, payments included.
func (c *Client) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	var bill models.Bill
	if _, err := c.do(ctx, call{op: "bills.getById", method: http.MethodGet, path: "/bills/" + escape(id)}, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (c *Client) CreateBill(ctx context.Context, input models.BillInput) (*models.Bill, error) {
	var bill models.Bill
	if _, err := c.do(ctx, call{op: "bills.create", method: http.MethodPost, path: "/bills", body: input}, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (c *Client) DeleteBill(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{op: "bills.delete", method: http.MethodDelete, path: "/bills/" + escape(id)}, nil)
	return err
}

// CreatePayment records a payment against a bill and returns it as stored.
// It does not return the updated bill; callers refresh with GetBill.
func (c *Client) CreatePayment(ctx context.Context, billID string, amount decimal.Decimal) (*models.Payment, error) {
	var payment models.Payment
	_, err := c.do(ctx, call{
		op:     "bills.addPayment",
		method: http.MethodPost,
		path:   "/bills/addpayment/" + escape(billID),
		body:   models.PaymentInput{Amount: amount},
	}, &payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// DeletePayment removes a payment. A token is required like every other
// mutation.
func (c *Client) DeletePayment(ctx context.Context, paymentID string) error {
	_, err := c.do(ctx, call{op: "bills.deletePayment", method: http.MethodDelete, path: "/bills/deletepayment/" + escape(paymentID)}, nil)
	return err
}
