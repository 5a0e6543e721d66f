package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus is the paid state of a bill.
type BillStatus string

const (
	BillStatusPaid   BillStatus = "Paid"
	BillStatusUnpaid BillStatus = "Unpaid"
)

// Bill represents an invoice raised against a shop.
//
// Status and CurrentPayment are whatever the server last reported. Callers that
// need the paid state should derive it from Payments with the calculator
// package instead of trusting either field.
type Bill struct {
	// ID is the server-assigned identifier.
	ID string `json:"_id"`

	// InvoiceNumber is the human-readable number, e.g. "INV-20250101-4F2A9C".
	InvoiceNumber string `json:"invoiceNumber"`

	// ShopID links the bill to the shop it was raised for. Bills created by
	// older clients only carry ShopName.
	ShopID string `json:"shopId,omitempty"`

	ShopName   string `json:"shopName"`
	DoctorName string `json:"doctorName"`

	// TotalAmount is the bill total, fixed at creation.
	TotalAmount decimal.Decimal `json:"totalAmount"`

	// CurrentPayment is the server's running sum of payments.
	CurrentPayment decimal.Decimal `json:"currentPayment"`

	// Payments is the authoritative payment history.
	Payments []Payment `json:"payments"`

	Status BillStatus `json:"status"`

	// Products are the line items copied from the catalog at creation.
	Products []LineItem `json:"products"`

	CreatedBy CreatorRef `json:"createdBy"`
	Date      time.Time  `json:"date"`
}

// Payment is one contribution toward a bill. It is owned by its bill.
type Payment struct {
	ID     string          `json:"_id"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// LineItem is a product as it was sold on a bill. Price and Name are copies,
// so later catalog edits do not change existing bills.
type LineItem struct {
	ID        string          `json:"_id,omitempty"`
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price × quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// CreatorRef is the embedded reference to the user that created a record.
type CreatorRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// FindPayment returns the payment with the given ID, if present.
func (b *Bill) FindPayment(id string) (Payment, bool) {
	for _, p := range b.Payments {
		if p.ID == id {
			return p, true
		}
	}
	return Payment{}, false
}
