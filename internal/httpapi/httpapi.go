package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"wingscafe/backend/internal/domain"
	"wingscafe/backend/internal/service"
)

type API struct {
	service       *service.Service
	allowedOrigin string
	now           func() time.Time
}

var logger = log.WithField("component", "httpapi")

func New(svc *service.Service, allowedOrigin string) *API {
	return &API{
		service:       svc,
		allowedOrigin: allowedOrigin,
		now:           time.Now,
	}
}

func (a *API) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("route not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMethodNotAllowed(w)
	})

	r.HandleFunc("/", a.handleBanner).Methods(http.MethodGet)
	r.HandleFunc("/api/items", a.handleItems).Methods(http.MethodGet)
	r.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/products", a.handleListProducts).Methods(http.MethodGet)
	v1.HandleFunc("/products", a.handleCreateProduct).Methods(http.MethodPost)
	v1.HandleFunc("/products/low-stock", a.handleLowStock).Methods(http.MethodGet)
	v1.HandleFunc("/products/{id}", a.handleGetProduct).Methods(http.MethodGet)
	v1.HandleFunc("/products/{id}", a.handleUpdateProduct).Methods(http.MethodPatch)
	v1.HandleFunc("/products/{id}", a.handleDeleteProduct).Methods(http.MethodDelete)
	v1.HandleFunc("/products/{id}/stock", a.handleAddStock).Methods(http.MethodPost)

	v1.HandleFunc("/sales", a.handleListSales).Methods(http.MethodGet)
	v1.HandleFunc("/sales", a.handleRecordSale).Methods(http.MethodPost)
	v1.HandleFunc("/sales/{id}", a.handleGetSale).Methods(http.MethodGet)
	v1.HandleFunc("/sales/{id}", a.handleEditSale).Methods(http.MethodPatch)
	v1.HandleFunc("/sales/{id}", a.handleDeleteSale).Methods(http.MethodDelete)

	v1.HandleFunc("/customers", a.handleListCustomers).Methods(http.MethodGet)
	v1.HandleFunc("/customers", a.handleCreateCustomer).Methods(http.MethodPost)
	v1.HandleFunc("/customers/{id}", a.handleGetCustomer).Methods(http.MethodGet)
	v1.HandleFunc("/customers/{id}", a.handleUpdateCustomer).Methods(http.MethodPatch)
	v1.HandleFunc("/customers/{id}", a.handleDeleteCustomer).Methods(http.MethodDelete)

	v1.HandleFunc("/ledger/reconciliation", a.handleReconciliation).Methods(http.MethodGet)

	return a.withMiddleware(r)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": a.now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleReconciliation(w http.ResponseWriter, r *http.Request) {
	report := a.service.Reconcile(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPatch) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(startedAt).String(),
		}).Info("request")
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeCodedError(w, status, "", err)
}

func writeCodedError(w http.ResponseWriter, status int, code string, err error) {
	// 5xx bodies never carry internal details; 4xx messages are user-facing.
	msg := err.Error()
	if status >= 500 {
		logger.WithError(err).WithField("status", status).Error("internal error")
		msg = "internal server error"
	}
	body := map[string]any{"error": msg}
	if code != "" {
		body["code"] = code
	}
	writeJSON(w, status, body)
}

// writeBadBody reports a body that could not be decoded.
func writeBadBody(w http.ResponseWriter, err error) {
	writeCodedError(w, http.StatusBadRequest, "invalid_input", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
}

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{domain.ErrSaleNotFound, http.StatusNotFound, "sale_not_found"},
	{domain.ErrCustomerNotFound, http.StatusNotFound, "customer_not_found"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{domain.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{domain.ErrInvalidDate, http.StatusBadRequest, "invalid_date"},
	{domain.ErrInvalidProduct, http.StatusBadRequest, "invalid_product"},
	{domain.ErrInvalidCustomer, http.StatusBadRequest, "invalid_customer"},
	{domain.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
	{domain.ErrProductHasSales, http.StatusConflict, "product_has_sales"},
}

// writeServiceError maps ledger errors onto HTTP statuses. Anything
// unrecognised, persistence failures included, is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, entry := range errorStatuses {
		if errors.Is(err, entry.err) {
			writeCodedError(w, entry.status, entry.code, err)
			return
		}
	}
	writeCodedError(w, http.StatusInternalServerError, "", err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
