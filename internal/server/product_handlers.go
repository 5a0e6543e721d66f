package server

import (
	"net/http"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
)

func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.SearchProducts(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, product)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var input models.ProductInput
	if err := decode(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := models.Validate(input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !input.Price.IsPositive() {
		s.writeError(w, r, apperr.Validation("price must be positive"))
		return
	}

	product := &models.Product{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		CreatedBy:   creator(r),
	}
	if err := s.store.CreateProduct(r.Context(), product); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusCreated, product)
}
