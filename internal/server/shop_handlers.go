package server

import (
	"net/http"

	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

func (s *Server) searchShops(w http.ResponseWriter, r *http.Request) {
	shops, err := s.store.SearchShops(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, shops)
}

func (s *Server) createShop(w http.ResponseWriter, r *http.Request) {
	var input models.ShopInput
	if err := decode(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := models.Validate(input); err != nil {
		s.writeError(w, r, err)
		return
	}

	shop := &models.Shop{
		ShopName:      input.ShopName,
		DoctorName:    input.DoctorName,
		Location:      input.Location,
		ContactNumber: input.ContactNumber,
		CreatedBy:     creator(r),
	}
	if err := s.store.CreateShop(r.Context(), shop); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("Shop created", "shop_id", shop.ID, "user_id", shop.CreatedBy.ID)
	s.writeData(w, http.StatusCreated, shop)
}

// getShop returns the shop with the bills raised against it.
func (s *Server) getShop(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	shop, err := s.store.GetShop(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	bills, err := s.store.ListBills(r.Context(), storage.BillFilter{ShopID: id})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	details := models.ShopDetails{Shop: *shop, Bills: make([]models.Bill, 0, len(bills))}
	for _, b := range bills {
		details.Bills = append(details.Bills, *b)
	}
	s.writeData(w, http.StatusOK, details)
}

func (s *Server) updateShop(w http.ResponseWriter, r *http.Request) {
	var input models.ShopInput
	if err := decode(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := models.Validate(input); err != nil {
		s.writeError(w, r, err)
		return
	}

	shop, err := s.store.GetShop(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	shop.ShopName = input.ShopName
	shop.DoctorName = input.DoctorName
	shop.Location = input.Location
	shop.ContactNumber = input.ContactNumber

	if err := s.store.UpdateShop(r.Context(), shop); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, shop)
}

func (s *Server) deleteShop(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteShop(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("Shop deleted", "shop_id", id)
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Shop deleted"})
}
