package domain

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInvalidAmount     = errors.New("amount must be a positive integer")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInvalidCustomer   = errors.New("invalid customer")
	ErrInvalidDate       = errors.New("invalid date")
	ErrProductHasSales   = errors.New("product has recorded sales")

	// ErrInvalidInput marks raw presentation values that could not be parsed.
	ErrInvalidInput = errors.New("invalid input")
)
