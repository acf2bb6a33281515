package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gorilla/mux"

	"wingscafe/backend/internal/domain"
)

type saleRequest struct {
	ProductID string    `json:"product_id"`
	Quantity  FormValue `json:"quantity"`
	Customer  string    `json:"customer"`
	Date      FormValue `json:"date"`
}

// saleEditRequest fields left out keep the sale's current values.
type saleEditRequest struct {
	Quantity FormValue `json:"quantity"`
	Customer *string   `json:"customer"`
	Date     FormValue `json:"date"`
}

var errCustomerRequired = fmt.Errorf("%w: customer is required", domain.ErrInvalidInput)

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sales": a.service.ListSales(r.Context())})
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := a.service.GetSale(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (a *API) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		writeServiceError(w, missing("product_id"))
		return
	}
	quantity, err := parseWholeNumber("quantity", req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	customer := strings.TrimSpace(req.Customer)
	if customer == "" {
		writeServiceError(w, errCustomerRequired)
		return
	}
	date, err := parseDate("date", req.Date, a.today())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sale, err := a.service.RecordSale(r.Context(), productID, quantity, customer, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sale": sale})
}

func (a *API) handleEditSale(w http.ResponseWriter, r *http.Request) {
	var req saleEditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	quantity, err := parseOptionalWholeNumber("quantity", req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	customer := optionalText(req.Customer)
	if customer != nil && *customer == "" {
		writeServiceError(w, errCustomerRequired)
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sale, err := a.service.PatchSale(r.Context(), mux.Vars(r)["id"], domain.SalePatch{
		Quantity: quantity,
		Customer: customer,
		Date:     date,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sale": sale})
}

func (a *API) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.service.DeleteSale(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (a *API) today() civil.Date {
	return civil.DateOf(a.now())
}
