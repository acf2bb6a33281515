package service

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"wingscafe/backend/internal/domain"
)

// Reconcile recomputes every product's total sold and revenue from the sales
// that reference it and reports each mismatch, plus any negative stock. Sales
// whose product is missing are listed as orphans. State is never modified.
func (s *Service) Reconcile(_ context.Context) domain.ReconciliationReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type sums struct {
		sold    int
		revenue decimal.Decimal
	}
	expected := make(map[string]*sums, len(s.state.products))
	for _, p := range s.state.products {
		expected[p.ID] = &sums{}
	}

	report := domain.ReconciliationReport{
		CheckedAt:     s.opts.Now(),
		Products:      len(s.state.products),
		Sales:         len(s.state.sales),
		OrphanSaleIDs: []string{},
		Discrepancies: []domain.Discrepancy{},
	}

	for _, sale := range s.state.sales {
		acc, ok := expected[sale.ProductID]
		if !ok {
			report.OrphanSaleIDs = append(report.OrphanSaleIDs, sale.ID)
			continue
		}
		acc.sold += sale.Quantity
		acc.revenue = acc.revenue.Add(sale.Total)
	}

	for _, p := range s.state.products {
		acc := expected[p.ID]
		if p.Quantity < 0 {
			report.Discrepancies = append(report.Discrepancies, domain.Discrepancy{
				ProductID:   p.ID,
				ProductName: p.Name,
				Field:       domain.FieldQuantity,
				Recorded:    strconv.Itoa(p.Quantity),
				Expected:    ">= 0",
			})
		}
		if p.TotalSold != acc.sold {
			report.Discrepancies = append(report.Discrepancies, domain.Discrepancy{
				ProductID:   p.ID,
				ProductName: p.Name,
				Field:       domain.FieldTotalSold,
				Recorded:    strconv.Itoa(p.TotalSold),
				Expected:    strconv.Itoa(acc.sold),
			})
		}
		if !p.Revenue.Equal(acc.revenue) {
			report.Discrepancies = append(report.Discrepancies, domain.Discrepancy{
				ProductID:   p.ID,
				ProductName: p.Name,
				Field:       domain.FieldRevenue,
				Recorded:    p.Revenue.String(),
				Expected:    acc.revenue.String(),
			})
		}
	}

	report.Consistent = len(report.Discrepancies) == 0
	if !report.Consistent || len(report.OrphanSaleIDs) > 0 {
		logger.WithFields(log.Fields{
			"discrepancies": len(report.Discrepancies),
			"orphans":       len(report.OrphanSaleIDs),
		}).Warn("ledger reconciliation found problems")
	}
	return report
}
