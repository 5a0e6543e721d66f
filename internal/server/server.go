// Package server implements the billing service's REST API on top of a
// storage.Store.
//
// Routes live under /api. Every response is an envelope:
//
//	{"success": true, "data": ..., "message": "..."}
//
// Login and register answer with "token" and "user" at the top level.
package server

import (
	"log/slog"
	"net/http"

	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/middleware"
	"github.com/mmynk/invoicer/internal/storage"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server serves the billing REST API.
type Server struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// New creates a Server.
func New(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *Server {
	return &Server{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Routes registers the API on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	authed := middleware.RequireAuth(s.jwtManager)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authed(h))
	}

	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/register", s.register)
	handle("GET /api/auth/me", s.me)

	handle("GET /api/shops/search", s.searchShops)
	handle("POST /api/shops", s.createShop)
	handle("GET /api/shops/{id}", s.getShop)
	handle("PUT /api/shops/{id}", s.updateShop)
	handle("DELETE /api/shops/{id}", s.deleteShop)

	handle("GET /api/products/search", s.searchProducts)
	handle("POST /api/products", s.createProduct)
	handle("GET /api/products/{id}", s.getProduct)

	handle("GET /api/bills", s.listBills)
	handle("GET /api/bills/search", s.searchBills)
	handle("POST /api/bills", s.createBill)
	handle("GET /api/bills/{id}", s.getBill)
	handle("DELETE /api/bills/{id}", s.deleteBill)
	handle("POST /api/bills/addpayment/{id}", s.addPayment)
	handle("DELETE /api/bills/deletepayment/{id}", s.deletePayment)
}

// Handler returns the API wrapped in logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Routes(mux)
	return middleware.Logging(middleware.CORS(mux))
}
