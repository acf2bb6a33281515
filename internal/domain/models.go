package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// MaxUnits caps how many units a product can account for, counting stock on
// hand and units held by recorded sales together.
const MaxUnits = 1_000_000_000

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	TotalSold int             `json:"total_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProductInput carries already-parsed values for product creation.
type ProductInput struct {
	Name     string `validate:"required,max=120"`
	Category string `validate:"max=60"`
	Price    decimal.Decimal
	Quantity int `validate:"gte=0,lte=1000000000"`
}

// ProductPatch holds the direct product edits; nil fields are left as they are.
type ProductPatch struct {
	Name     *string
	Category *string
	Price    *decimal.Decimal
	Quantity *int
}

// SalePatch holds sale edits; nil fields keep the sale's current values.
type SalePatch struct {
	Quantity *int
	Customer *string
	Date     *civil.Date
}

type Sale struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	Customer    string          `json:"customer"`
	Date        civil.Date      `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

type Customer struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Phone         string      `json:"phone"`
	Address       string      `json:"address,omitempty"`
	LoyaltyPoints int         `json:"loyalty_points"`
	Birthday      *civil.Date `json:"birthday,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// BirthdayOn reports whether the customer's birthday falls on d's month and day.
func (c Customer) BirthdayOn(d civil.Date) bool {
	return c.Birthday != nil && c.Birthday.Month == d.Month && c.Birthday.Day == d.Day
}

type CustomerInput struct {
	Name          string `validate:"required,max=120"`
	Email         string `validate:"required,email"`
	Phone         string `validate:"required,max=32"`
	Address       string `validate:"max=240"`
	LoyaltyPoints int    `validate:"gte=0"`
	Birthday      *civil.Date
}

type CustomerPatch struct {
	Name          *string
	Email         *string
	Phone         *string
	Address       *string
	LoyaltyPoints *int
	Birthday      *civil.Date
}

// Discrepancy is one product aggregate that disagrees with its sales.
type Discrepancy struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Field       string `json:"field"`
	Recorded    string `json:"recorded"`
	Expected    string `json:"expected"`
}

type ReconciliationReport struct {
	CheckedAt     time.Time     `json:"checked_at"`
	Products      int           `json:"products"`
	Sales         int           `json:"sales"`
	Consistent    bool          `json:"consistent"`
	OrphanSaleIDs []string      `json:"orphan_sale_ids"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

const (
	FieldTotalSold = "total_sold"
	FieldRevenue   = "revenue"
	FieldQuantity  = "quantity"
)
