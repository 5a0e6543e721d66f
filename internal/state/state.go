// Package state holds the client's in-memory lists of bills and shops.
//
// A Store is created once and passed to the services that mutate it. Services
// only write bills to it after the server has confirmed a change and the bill
// has been re-read, so the lists never hold a locally guessed payment state.
package state

import (
	"sync"

	"github.com/mmynk/invoicer/internal/models"
)

// Store is the shared application state. It is safe for concurrent use.
// Every accessor returns copies.
type Store struct {
	mu    sync.RWMutex
	bills []models.Bill
	shops []models.Shop
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Bills returns the current bill list.
func (s *Store) Bills() []models.Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBills(s.bills)
}

// Bill returns the bill with the given ID, if loaded.
func (s *Store) Bill(id string) (models.Bill, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bills {
		if b.ID == id {
			return cloneBill(b), true
		}
	}
	return models.Bill{}, false
}

// Shops returns the current shop list.
func (s *Store) Shops() []models.Shop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Shop(nil), s.shops...)
}

// SetBills replaces the bill list.
func (s *Store) SetBills(bills []models.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills = cloneBills(bills)
}

// SetShops replaces the shop list.
func (s *Store) SetShops(shops []models.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops = append([]models.Shop(nil), shops...)
}

// AddBill puts a newly created bill at the front of the list.
func (s *Store) AddBill(bill models.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills = append([]models.Bill{cloneBill(bill)}, s.bills...)
}

// AddShop puts a newly created shop at the front of the list.
func (s *Store) AddShop(shop models.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops = append([]models.Shop{shop}, s.shops...)
}

// ReplaceBill swaps in the authoritative copy of a bill. A bill that is not
// in the list yet is added to the front.
func (s *Store) ReplaceBill(bill models.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bills {
		if s.bills[i].ID == bill.ID {
			s.bills[i] = cloneBill(bill)
			return
		}
	}
	s.bills = append([]models.Bill{cloneBill(bill)}, s.bills...)
}

// RemoveBill drops a bill. Unknown IDs are ignored.
func (s *Store) RemoveBill(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bills {
		if s.bills[i].ID == id {
			s.bills = append(s.bills[:i:i], s.bills[i+1:]...)
			return
		}
	}
}

// RemoveShop drops a shop. Unknown IDs are ignored.
func (s *Store) RemoveShop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.shops {
		if s.shops[i].ID == id {
			s.shops = append(s.shops[:i:i], s.shops[i+1:]...)
			return
		}
	}
}

func cloneBills(bills []models.Bill) []models.Bill {
	if bills == nil {
		return nil
	}
	out := make([]models.Bill, len(bills))
	for i, b := range bills {
		out[i] = cloneBill(b)
	}
	return out
}

func cloneBill(b models.Bill) models.Bill {
	b.Payments = append([]models.Payment(nil), b.Payments...)
	b.Products = append([]models.LineItem(nil), b.Products...)
	return b
}
