package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shop is a customer location. Bills reference it by name.
type Shop struct {
	ID            string     `json:"_id"`
	ShopName      string     `json:"shopName"`
	DoctorName    string     `json:"doctorName"`
	Location      string     `json:"location"`
	ContactNumber string     `json:"contactNumber"`
	CreatedBy     CreatorRef `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ShopDetails is a shop together with the bills raised against it.
type ShopDetails struct {
	Shop
	Bills []Bill `json:"bills"`
}

// Product is a catalog entry that can be added to a bill.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	CreatedBy   CreatorRef      `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
