package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"wingscafe/backend/internal/domain"
)

var demoProducts = []domain.ProductInput{
	{Name: "Espresso", Category: "Beverages", Price: decimal.RequireFromString("3.00"), Quantity: 20},
	{Name: "Cappuccino", Category: "Beverages", Price: decimal.RequireFromString("4.00"), Quantity: 15},
	{Name: "Croissant", Category: "Pastries", Price: decimal.RequireFromString("2.50"), Quantity: 30},
	{Name: "Sandwich", Category: "Food", Price: decimal.RequireFromString("5.00"), Quantity: 10},
	{Name: "Tea", Category: "Beverages", Price: decimal.RequireFromString("2.00"), Quantity: 25},
}

// SeedDemo stocks the default menu when the product store is empty. It reports
// how many products were created.
func (s *Service) SeedDemo(ctx context.Context) (int, error) {
	s.mu.RLock()
	empty := len(s.state.products) == 0
	s.mu.RUnlock()
	if !empty {
		return 0, nil
	}

	for i, in := range demoProducts {
		if _, err := s.CreateProduct(ctx, in); err != nil {
			return i, fmt.Errorf("seed %s: %w", in.Name, err)
		}
	}
	logger.WithField("products", len(demoProducts)).Info("demo menu seeded")
	return len(demoProducts), nil
}
