package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	log "github.com/sirupsen/logrus"

	"wingscafe/backend/internal/domain"
	"wingscafe/backend/internal/store"
	"wingscafe/backend/internal/xid"
)

// ListSales returns the ledger in the order sales were recorded.
func (s *Service) ListSales(_ context.Context) []domain.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.state.sales)
}

func (s *Service) GetSale(_ context.Context, id string) (domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.state.saleIndex(id)
	if idx < 0 {
		return domain.Sale{}, domain.ErrSaleNotFound
	}
	return s.state.sales[idx], nil
}

// RecordSale sells quantity units of a product at its current price.
func (s *Service) RecordSale(ctx context.Context, productID string, quantity int, customer string, date civil.Date) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.state.productIndex(productID)
	if idx < 0 {
		return domain.Sale{}, domain.ErrProductNotFound
	}
	if quantity <= 0 {
		return domain.Sale{}, domain.ErrInvalidQuantity
	}
	if !date.IsValid() {
		return domain.Sale{}, domain.ErrInvalidDate
	}

	product := s.state.products[idx]
	if product.Quantity < quantity {
		return domain.Sale{}, fmt.Errorf("%w: %s has %d in stock, %d requested",
			domain.ErrInsufficientStock, product.Name, product.Quantity, quantity)
	}

	total := lineTotal(product.Price, quantity)
	sale := domain.Sale{
		ID:          xid.New("sale"),
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		Total:       total,
		Customer:    strings.TrimSpace(customer),
		Date:        date,
		CreatedAt:   s.opts.Now(),
	}

	next := s.state.clone()
	p := &next.products[idx]
	p.Quantity -= quantity
	p.TotalSold += quantity
	p.Revenue = p.Revenue.Add(total)
	next.sales = append(next.sales, sale)

	if err := s.commit(ctx, next, store.ProductsKey, store.SalesKey); err != nil {
		return domain.Sale{}, err
	}

	logger.WithFields(log.Fields{
		"sale_id":    sale.ID,
		"product_id": sale.ProductID,
		"quantity":   sale.Quantity,
		"total":      sale.Total.String(),
	}).Info("sale recorded")
	return sale, nil
}

// EditSale replaces a sale's quantity, customer and date. See PatchSale.
func (s *Service) EditSale(ctx context.Context, saleID string, quantity int, customer string, date civil.Date) (domain.Sale, error) {
	return s.PatchSale(ctx, saleID, domain.SalePatch{Quantity: &quantity, Customer: &customer, Date: &date})
}

// PatchSale edits a sale and moves the quantity difference through the
// product's stock and totals. Nil patch fields keep the sale's current values,
// read under the same lock as the write. The unit price used for the new total
// depends on the pricing policy.
func (s *Service) PatchSale(ctx context.Context, saleID string, patch domain.SalePatch) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	si := s.state.saleIndex(saleID)
	if si < 0 {
		return domain.Sale{}, domain.ErrSaleNotFound
	}
	old := s.state.sales[si]

	pi := s.state.productIndex(old.ProductID)
	if pi < 0 {
		return domain.Sale{}, fmt.Errorf("%w: sale %s references %s", domain.ErrProductNotFound, old.ID, old.ProductID)
	}

	quantity, customer, date := old.Quantity, old.Customer, old.Date
	if patch.Quantity != nil {
		quantity = *patch.Quantity
	}
	if patch.Customer != nil {
		customer = strings.TrimSpace(*patch.Customer)
	}
	if patch.Date != nil {
		date = *patch.Date
	}

	if quantity <= 0 {
		return domain.Sale{}, domain.ErrInvalidQuantity
	}
	if !date.IsValid() {
		return domain.Sale{}, domain.ErrInvalidDate
	}

	product := s.state.products[pi]
	delta := quantity - old.Quantity
	if product.Quantity < delta {
		return domain.Sale{}, fmt.Errorf("%w: %s has %d in stock, %d more requested",
			domain.ErrInsufficientStock, product.Name, product.Quantity, delta)
	}

	unit := old.UnitPrice
	if s.opts.Pricing == PricingReprice {
		unit = product.Price
	}
	total := lineTotal(unit, quantity)
	now := s.opts.Now()

	updated := old
	updated.Quantity = quantity
	updated.UnitPrice = unit
	updated.Total = total
	updated.Customer = customer
	updated.Date = date
	updated.UpdatedAt = &now

	next := s.state.clone()
	p := &next.products[pi]
	p.Quantity -= delta
	p.TotalSold += delta
	p.Revenue = p.Revenue.Add(total.Sub(old.Total))
	next.sales[si] = updated

	if err := s.commit(ctx, next, store.ProductsKey, store.SalesKey); err != nil {
		return domain.Sale{}, err
	}

	logger.WithFields(log.Fields{
		"sale_id": updated.ID,
		"delta":   delta,
		"total":   updated.Total.String(),
		"pricing": string(s.opts.Pricing),
	}).Info("sale edited")
	return updated, nil
}

// DeleteSale removes a sale and returns its units and revenue to the product.
// A sale whose product is gone is dropped without touching any product.
func (s *Service) DeleteSale(ctx context.Context, saleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	si := s.state.saleIndex(saleID)
	if si < 0 {
		return domain.ErrSaleNotFound
	}
	sale := s.state.sales[si]

	next := s.state.clone()
	next.sales = slices.Delete(next.sales, si, si+1)
	keys := []string{store.SalesKey}

	pi := s.state.productIndex(sale.ProductID)
	if pi >= 0 {
		p := &next.products[pi]
		p.Quantity += sale.Quantity
		p.TotalSold -= sale.Quantity
		p.Revenue = p.Revenue.Sub(sale.Total)
		keys = append(keys, store.ProductsKey)
	}

	if err := s.commit(ctx, next, keys...); err != nil {
		return err
	}

	entry := logger.WithFields(log.Fields{
		"sale_id":    sale.ID,
		"product_id": sale.ProductID,
		"quantity":   sale.Quantity,
	})
	if pi < 0 {
		entry.Warn("orphan sale deleted, product no longer exists")
		return nil
	}
	entry.Info("sale deleted")
	return nil
}
