package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"wingscafe/backend/internal/domain"
	"wingscafe/backend/internal/store"
	"wingscafe/backend/internal/xid"
)

// ListProducts returns products in creation order, optionally filtered by a
// case-insensitive substring of the name.
func (s *Service) ListProducts(_ context.Context, search string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	products := make([]domain.Product, 0, len(s.state.products))
	for _, p := range s.state.products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		products = append(products, p)
	}
	return products
}

func (s *Service) ListLowStock(_ context.Context) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0)
	for _, p := range s.state.products {
		if p.Quantity <= s.opts.LowStockThreshold {
			products = append(products, p)
		}
	}
	slices.SortStableFunc(products, func(a, b domain.Product) int {
		return a.Quantity - b.Quantity
	})
	return products
}

func (s *Service) GetProduct(_ context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.state.productIndex(id)
	if idx < 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return s.state.products[idx], nil
}

func (s *Service) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := s.checkProduct(in); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product := domain.Product{
		ID:        xid.New("prod"),
		Name:      in.Name,
		Category:  in.Category,
		Price:     in.Price,
		Quantity:  in.Quantity,
		CreatedAt: s.opts.Now(),
	}

	next := s.state.clone()
	next.products = append(next.products, product)
	if err := s.commit(ctx, next, store.ProductsKey); err != nil {
		return domain.Product{}, err
	}

	logger.WithFields(log.Fields{
		"product_id": product.ID,
		"name":       product.Name,
		"price":      product.Price.String(),
		"quantity":   product.Quantity,
	}).Info("product created")
	return product, nil
}

// UpdateProduct applies direct edits. Sales already recorded keep their
// product name and price snapshots.
func (s *Service) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.state.productIndex(id)
	if idx < 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}

	updated := s.state.products[idx]
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		updated.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Price != nil {
		updated.Price = *patch.Price
	}
	if patch.Quantity != nil {
		updated.Quantity = *patch.Quantity
	}

	err := s.checkProduct(domain.ProductInput{
		Name:     updated.Name,
		Category: updated.Category,
		Price:    updated.Price,
		Quantity: updated.Quantity,
	})
	if err != nil {
		return domain.Product{}, err
	}
	if updated.Quantity > domain.MaxUnits-updated.TotalSold {
		return domain.Product{}, fmt.Errorf("%w: quantity plus %d sold must not exceed %d units",
			domain.ErrInvalidProduct, updated.TotalSold, domain.MaxUnits)
	}

	next := s.state.clone()
	next.products[idx] = updated
	if err := s.commit(ctx, next, store.ProductsKey); err != nil {
		return domain.Product{}, err
	}

	logger.WithFields(log.Fields{
		"product_id": updated.ID,
		"price":      updated.Price.String(),
		"quantity":   updated.Quantity,
	}).Info("product updated")
	return updated, nil
}

// DeleteProduct removes a product according to the configured delete policy.
// It returns the number of sales removed alongside it.
func (s *Service) DeleteProduct(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.state.productIndex(id)
	if idx < 0 {
		return 0, domain.ErrProductNotFound
	}

	refs := 0
	for _, sale := range s.state.sales {
		if sale.ProductID == id {
			refs++
		}
	}
	if refs > 0 && s.opts.Deletion == DeleteRestrict {
		return 0, fmt.Errorf("%w: %d sale(s) reference %s", domain.ErrProductHasSales, refs, s.state.products[idx].Name)
	}

	next := s.state.clone()
	next.products = slices.Delete(next.products, idx, idx+1)
	keys := []string{store.ProductsKey}
	if refs > 0 {
		next.sales = slices.DeleteFunc(next.sales, func(sale domain.Sale) bool {
			return sale.ProductID == id
		})
		keys = append(keys, store.SalesKey)
	}

	if err := s.commit(ctx, next, keys...); err != nil {
		return 0, err
	}

	logger.WithFields(log.Fields{
		"product_id":    id,
		"removed_sales": refs,
	}).Info("product deleted")
	return refs, nil
}

// AddStock receives new stock. Sales totals are not affected. The product's
// stock plus units sold stays within domain.MaxUnits.
func (s *Service) AddStock(ctx context.Context, id string, amount int) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.state.productIndex(id)
	if idx < 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if amount <= 0 {
		return domain.Product{}, domain.ErrInvalidAmount
	}
	product := s.state.products[idx]
	if room := domain.MaxUnits - product.Quantity - product.TotalSold; amount > room {
		return domain.Product{}, fmt.Errorf("%w: %s can take at most %d more units", domain.ErrInvalidAmount, product.Name, max(room, 0))
	}

	next := s.state.clone()
	next.products[idx].Quantity += amount
	if err := s.commit(ctx, next, store.ProductsKey); err != nil {
		return domain.Product{}, err
	}

	product = next.products[idx]
	logger.WithFields(log.Fields{
		"product_id": id,
		"added":      amount,
		"quantity":   product.Quantity,
	}).Info("stock added")
	return product, nil
}

func (s *Service) checkProduct(in domain.ProductInput) error {
	if err := s.checkStruct(in, domain.ErrInvalidProduct); err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidProduct)
	}
	return nil
}
