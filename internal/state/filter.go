package state

import (
	"fmt"
	"strings"

	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
)

// StatusFilter selects bills by paid state.
type StatusFilter string

const (
	StatusAll    StatusFilter = "All"
	StatusPaid   StatusFilter = "Paid"
	StatusUnpaid StatusFilter = "Unpaid"
)

// ParseStatusFilter accepts all, paid or unpaid in any case.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "paid":
		return StatusPaid, nil
	case "unpaid":
		return StatusUnpaid, nil
	default:
		return "", fmt.Errorf("unknown status filter %q", s)
	}
}

// SearchBy selects which bill field a text search matches.
type SearchBy string

const (
	SearchAll     SearchBy = "All"
	SearchShop    SearchBy = "Shop"
	SearchDoctor  SearchBy = "Doctor"
	SearchInvoice SearchBy = "Invoice"
)

// ParseSearchBy accepts all, shop, doctor or invoice in any case.
func ParseSearchBy(s string) (SearchBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return SearchAll, nil
	case "shop":
		return SearchShop, nil
	case "doctor":
		return SearchDoctor, nil
	case "invoice":
		return SearchInvoice, nil
	default:
		return "", fmt.Errorf("unknown search field %q", s)
	}
}

// FilterBills keeps the bills whose paid state matches status. The state is
// derived from each bill's payments, not read from its Status field.
func FilterBills(bills []models.Bill, status StatusFilter) []models.Bill {
	if status == StatusAll || status == "" {
		return bills
	}
	want := models.BillStatus(status)
	var out []models.Bill
	for _, b := range bills {
		if calculator.DeriveStatus(b.TotalAmount, b.Payments) == want {
			out = append(out, b)
		}
	}
	return out
}
