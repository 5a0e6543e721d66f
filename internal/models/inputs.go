package models

import "github.com/shopspring/decimal"

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,contact"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResult is what a successful login returns.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ShopInput is the body of POST /shops and PUT /shops/{id}.
type ShopInput struct {
	ShopName      string `json:"shopName" validate:"required"`
	DoctorName    string `json:"doctorName" validate:"required"`
	Location      string `json:"location" validate:"required"`
	ContactNumber string `json:"contactNumber" validate:"required,contact"`
}

// ProductInput is the body of POST /products.
type ProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// BillInput is the body of POST /bills. TotalAmount must equal the sum of the
// line item subtotals.
type BillInput struct {
	ShopID      string          `json:"shopId,omitempty"`
	ShopName    string          `json:"shopName" validate:"required"`
	DoctorName  string          `json:"doctorName" validate:"required"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Products    []LineItemInput `json:"products" validate:"required,min=1,dive"`
}

// LineItemInput is one selected product on a new bill.
type LineItemInput struct {
	ProductID string          `json:"product" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
}

// PaymentInput is the body of POST /bills/addpayment/{id}.
type PaymentInput struct {
	Amount decimal.Decimal `json:"amount"`
}
