package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"wingscafe/backend/internal/domain"
	"wingscafe/backend/internal/store"
)

type PricingPolicy string

const (
	// PricingFreeze keeps the unit price a sale was recorded at when it is edited.
	PricingFreeze PricingPolicy = "freeze"
	// PricingReprice re-prices the whole sale at the product's current price when it is edited.
	PricingReprice PricingPolicy = "reprice"
)

type DeletePolicy string

const (
	// DeleteRestrict refuses to delete a product that still has sales.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade deletes the product together with its sales.
	DeleteCascade DeletePolicy = "cascade"
)

func ParsePricingPolicy(raw string) (PricingPolicy, error) {
	switch PricingPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PricingFreeze:
		return PricingFreeze, nil
	case PricingReprice:
		return PricingReprice, nil
	default:
		return "", fmt.Errorf("unknown pricing policy %q", raw)
	}
}

func ParseDeletePolicy(raw string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DeleteRestrict:
		return DeleteRestrict, nil
	case DeleteCascade:
		return DeleteCascade, nil
	default:
		return "", fmt.Errorf("unknown product delete policy %q", raw)
	}
}

type Options struct {
	Pricing           PricingPolicy
	Deletion          DeletePolicy
	LowStockThreshold int
	Now               func() time.Time
}

// Service owns the product store, sale ledger and customer directory for the
// lifetime of the process. Every mutation computes the next state on a copy,
// persists the touched collections and only then installs the copy.
type Service struct {
	mu       sync.RWMutex
	kv       store.KV
	opts     Options
	validate *validator.Validate
	state    state
}

type state struct {
	products  []domain.Product
	sales     []domain.Sale
	customers []domain.Customer
}

var logger = log.WithField("component", "ledger")

func New(kv store.KV, opts Options) *Service {
	if opts.Pricing == "" {
		opts.Pricing = PricingFreeze
	}
	if opts.Deletion == "" {
		opts.Deletion = DeleteRestrict
	}
	if opts.LowStockThreshold < 0 {
		opts.LowStockThreshold = 0
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Service{
		kv:       kv,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load replaces the in-memory state with the snapshots held by the KV store.
// Missing keys load as empty collections.
func (s *Service) Load(ctx context.Context) error {
	var next state
	if err := loadCollection(ctx, s.kv, store.ProductsKey, &next.products); err != nil {
		return err
	}
	if err := loadCollection(ctx, s.kv, store.SalesKey, &next.sales); err != nil {
		return err
	}
	if err := loadCollection(ctx, s.kv, store.CustomersKey, &next.customers); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	logger.WithFields(log.Fields{
		"products":  len(next.products),
		"sales":     len(next.sales),
		"customers": len(next.customers),
	}).Info("ledger loaded")
	return nil
}

func loadCollection(ctx context.Context, kv store.KV, key string, dest any) error {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("%w: %s: %v", store.ErrCorruptSnapshot, key, err)
	}
	return nil
}

// commit persists the named collections of next and installs it. The caller
// must hold the write lock. On error the current state is left untouched.
func (s *Service) commit(ctx context.Context, next state, keys ...string) error {
	entries := make(map[string]string, len(keys))
	for _, key := range keys {
		payload, err := next.encode(key)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		entries[key] = payload
	}

	if err := store.Write(ctx, s.kv, entries); err != nil {
		logger.WithError(err).WithField("keys", keys).Error("snapshot write failed, change discarded")
		return fmt.Errorf("persist snapshot: %w", err)
	}

	s.state = next
	return nil
}

func (st state) clone() state {
	return state{
		products:  cloneSlice(st.products),
		sales:     cloneSlice(st.sales),
		customers: cloneSlice(st.customers),
	}
}

func (st state) encode(key string) (string, error) {
	var payload []byte
	var err error
	switch key {
	case store.ProductsKey:
		payload, err = json.Marshal(st.products)
	case store.SalesKey:
		payload, err = json.Marshal(st.sales)
	case store.CustomersKey:
		payload, err = json.Marshal(st.customers)
	default:
		return "", fmt.Errorf("unknown snapshot key %q", key)
	}
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func (st state) productIndex(id string) int {
	for i := range st.products {
		if st.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (st state) saleIndex(id string) int {
	for i := range st.sales {
		if st.sales[i].ID == id {
			return i
		}
	}
	return -1
}

func (st state) customerIndex(id string) int {
	for i := range st.customers {
		if st.customers[i].ID == id {
			return i
		}
	}
	return -1
}

// cloneSlice always returns a non-nil copy so empty collections encode as [].
func cloneSlice[T any](src []T) []T {
	out := make([]T, len(src), len(src)+1)
	copy(out, src)
	return out
}

func lineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

func (s *Service) checkStruct(v any, kind error) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", kind, err)
	}

	reasons := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			reasons = append(reasons, field+" is required")
		case "email":
			reasons = append(reasons, field+" must be a valid email address")
		case "gte":
			reasons = append(reasons, field+" must not be negative")
		case "lte":
			reasons = append(reasons, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "max":
			reasons = append(reasons, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			reasons = append(reasons, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", kind, strings.Join(reasons, ", "))
}
