package service

import (
	"context"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"wingscafe/backend/internal/domain"
	"wingscafe/backend/internal/store"
	"wingscafe/backend/internal/xid"
)

// ListCustomers matches search against name, email and phone.
func (s *Service) ListCustomers(_ context.Context, search string) []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	customers := make([]domain.Customer, 0, len(s.state.customers))
	for _, c := range s.state.customers {
		if needle != "" && !matchesCustomer(c, needle) {
			continue
		}
		customers = append(customers, c)
	}
	return customers
}

func matchesCustomer(c domain.Customer, needle string) bool {
	return strings.Contains(strings.ToLower(c.Name), needle) ||
		strings.Contains(strings.ToLower(c.Email), needle) ||
		strings.Contains(c.Phone, needle)
}

func (s *Service) GetCustomer(_ context.Context, id string) (domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.state.customerIndex(id)
	if idx < 0 {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return s.state.customers[idx], nil
}

func (s *Service) CreateCustomer(ctx context.Context, in domain.CustomerInput) (domain.Customer, error) {
	in = trimCustomer(in)
	if err := s.checkStruct(in, domain.ErrInvalidCustomer); err != nil {
		return domain.Customer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer := domain.Customer{
		ID:            xid.New("cust"),
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		LoyaltyPoints: in.LoyaltyPoints,
		Birthday:      in.Birthday,
		CreatedAt:     s.opts.Now(),
	}

	next := s.state.clone()
	next.customers = append(next.customers, customer)
	if err := s.commit(ctx, next, store.CustomersKey); err != nil {
		return domain.Customer{}, err
	}

	logger.WithField("customer_id", customer.ID).Info("customer created")
	return customer, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, patch domain.CustomerPatch) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.state.customerIndex(id)
	if idx < 0 {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	current := s.state.customers[idx]
	in := domain.CustomerInput{
		Name:          current.Name,
		Email:         current.Email,
		Phone:         current.Phone,
		Address:       current.Address,
		LoyaltyPoints: current.LoyaltyPoints,
		Birthday:      current.Birthday,
	}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.Email != nil {
		in.Email = *patch.Email
	}
	if patch.Phone != nil {
		in.Phone = *patch.Phone
	}
	if patch.Address != nil {
		in.Address = *patch.Address
	}
	if patch.LoyaltyPoints != nil {
		in.LoyaltyPoints = *patch.LoyaltyPoints
	}
	if patch.Birthday != nil {
		in.Birthday = patch.Birthday
	}

	in = trimCustomer(in)
	if err := s.checkStruct(in, domain.ErrInvalidCustomer); err != nil {
		return domain.Customer{}, err
	}

	updated := current
	updated.Name = in.Name
	updated.Email = in.Email
	updated.Phone = in.Phone
	updated.Address = in.Address
	updated.LoyaltyPoints = in.LoyaltyPoints
	updated.Birthday = in.Birthday

	next := s.state.clone()
	next.customers[idx] = updated
	if err := s.commit(ctx, next, store.CustomersKey); err != nil {
		return domain.Customer{}, err
	}

	logger.WithField("customer_id", id).Info("customer updated")
	return updated, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.state.customerIndex(id)
	if idx < 0 {
		return domain.ErrCustomerNotFound
	}

	next := s.state.clone()
	next.customers = slices.Delete(next.customers, idx, idx+1)
	if err := s.commit(ctx, next, store.CustomersKey); err != nil {
		return err
	}

	logger.WithFields(log.Fields{"customer_id": id}).Info("customer deleted")
	return nil
}

func trimCustomer(in domain.CustomerInput) domain.CustomerInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	return in
}
