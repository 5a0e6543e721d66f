// Package calculator holds the pure bill arithmetic: payment sums, remaining
// balances, paid/unpaid derivation and payment validation.
//
// Nothing here talks to the network. Every function takes the authoritative
// payment list as input, so the answer is always recomputed from what the
// server last confirmed rather than from a running client-side counter.
package calculator

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
)

// Summary is the reconciled view of a bill that list, detail and create screens
// render.
type Summary struct {
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal // floored at zero
	Overpaid  decimal.Decimal // zero unless payments exceed the total
	Status    models.BillStatus
}

// CurrentPayment returns the sum of all payment amounts.
func CurrentPayment(payments []models.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// Remaining returns total minus the sum of payments. The result is negative
// when the bill is overpaid; callers must surface that instead of hiding it.
func Remaining(bill *models.Bill) decimal.Decimal {
	return bill.TotalAmount.Sub(CurrentPayment(bill.Payments))
}

// DisplayRemaining returns Remaining floored at zero.
func DisplayRemaining(bill *models.Bill) decimal.Decimal {
	r := Remaining(bill)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Overpaid reports whether payments exceed the bill total.
func Overpaid(bill *models.Bill) bool {
	return Remaining(bill).IsNegative()
}

// DeriveStatus returns Paid iff total > 0 and the payments cover it.
func DeriveStatus(total decimal.Decimal, payments []models.Payment) models.BillStatus {
	if total.IsPositive() && CurrentPayment(payments).GreaterThanOrEqual(total) {
		return models.BillStatusPaid
	}
	return models.BillStatusUnpaid
}

// Reconcile computes the Summary of a bill from its payment list.
func Reconcile(bill *models.Bill) Summary {
	paid := CurrentPayment(bill.Payments)
	remaining := bill.TotalAmount.Sub(paid)

	s := Summary{
		Total:     bill.TotalAmount,
		Paid:      paid,
		Remaining: remaining,
		Overpaid:  decimal.Zero,
		Status:    DeriveStatus(bill.TotalAmount, bill.Payments),
	}
	if remaining.IsNegative() {
		s.Remaining = decimal.Zero
		s.Overpaid = remaining.Neg()
	}
	return s
}

// Apply overwrites the bill's derived fields (CurrentPayment, Status) from its
// payment list and returns the summary.
func Apply(bill *models.Bill) Summary {
	s := Reconcile(bill)
	bill.CurrentPayment = s.Paid
	bill.Status = s.Status
	return s
}

// ParseAmount parses user-entered text as a positive amount.
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, apperr.Validation(apperr.ReasonInvalidAmount)
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, apperr.Validation(apperr.ReasonInvalidAmount)
	}
	if !amount.IsPositive() {
		return decimal.Zero, apperr.Validation(apperr.ReasonInvalidAmount)
	}
	return amount, nil
}

// ValidatePayment checks a new payment against the bill's confirmed payments.
// Paying exactly the remaining balance is allowed.
func ValidatePayment(bill *models.Bill, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Validation(apperr.ReasonInvalidAmount)
	}
	if CurrentPayment(bill.Payments).Add(amount).GreaterThan(bill.TotalAmount) {
		return apperr.Validation(apperr.ReasonExceedsTotal)
	}
	return nil
}

// Transition describes a status change between two reconciled states.
type Transition struct {
	From models.BillStatus
	To   models.BillStatus
}

// Changed reports whether the status moved.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// StatusTransition derives the status before and after a change to a bill's
// payments.
func StatusTransition(before, after *models.Bill) Transition {
	return Transition{
		From: DeriveStatus(before.TotalAmount, before.Payments),
		To:   DeriveStatus(after.TotalAmount, after.Payments),
	}
}
