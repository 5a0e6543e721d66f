package server

import (
	"net/http"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

func (s *Server) listBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.writeBills(w, r, storage.BillFilter{
		Shop:    q.Get("shop"),
		Doctor:  q.Get("doctor"),
		Invoice: q.Get("invoice"),
		ShopID:  q.Get("shopId"),
	})
}

func (s *Server) searchBills(w http.ResponseWriter, r *http.Request) {
	s.writeBills(w, r, storage.BillFilter{Query: r.URL.Query().Get("query")})
}

func (s *Server) writeBills(w http.ResponseWriter, r *http.Request, filter storage.BillFilter) {
	bills, err := s.store.ListBills(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, bills)
}

func (s *Server) getBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.store.GetBill(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, bill)
}

// createBill stores a new bill. The total is recomputed from the line items;
// a client-supplied total that disagrees is rejected.
func (s *Server) createBill(w http.ResponseWriter, r *http.Request) {
	var input models.BillInput
	if err := decode(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := models.Validate(input); err != nil {
		s.writeError(w, r, err)
		return
	}

	bill := &models.Bill{
		ShopID:     input.ShopID,
		ShopName:   input.ShopName,
		DoctorName: input.DoctorName,
		Payments:   []models.Payment{},
		CreatedBy:  creator(r),
	}
	for _, p := range input.Products {
		if !p.Price.IsPositive() {
			s.writeError(w, r, apperr.Validation("price must be positive"))
			return
		}
		bill.Products = append(bill.Products, models.LineItem{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  p.Quantity,
		})
	}

	bill.TotalAmount = calculator.LineTotal(bill.Products)
	if !input.TotalAmount.IsZero() && !input.TotalAmount.Equal(bill.TotalAmount) {
		s.writeError(w, r, apperr.Validation("total does not match line items"))
		return
	}

	if err := s.store.CreateBill(r.Context(), bill); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("Bill created",
		"bill_id", bill.ID,
		"invoice", bill.InvoiceNumber,
		"total", bill.TotalAmount,
		"user_id", bill.CreatedBy.ID,
	)
	s.writeData(w, http.StatusCreated, bill)
}

func (s *Server) deleteBill(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteBill(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("Bill deleted", "bill_id", id)
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Bill deleted"})
}

// addPayment records a payment. The store rejects payments that would take
// the sum past the total and re-derives the status in the same transaction.
func (s *Server) addPayment(w http.ResponseWriter, r *http.Request) {
	billID := r.PathValue("id")

	var input models.PaymentInput
	if err := decode(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !input.Amount.IsPositive() {
		s.writeError(w, r, apperr.Validation(apperr.ReasonInvalidAmount))
		return
	}

	payment := &models.Payment{Amount: input.Amount}
	if err := s.store.AddPayment(r.Context(), billID, payment); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("Payment added", "bill_id", billID, "payment_id", payment.ID, "amount", payment.Amount)
	s.writeData(w, http.StatusCreated, payment)
}

func (s *Server) deletePayment(w http.ResponseWriter, r *http.Request) {
	paymentID := r.PathValue("id")

	billID, err := s.store.DeletePayment(r.Context(), paymentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("Payment deleted", "bill_id", billID, "payment_id", paymentID)
	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Payment deleted",
		Data:    map[string]string{"billId": billID},
	})
}
