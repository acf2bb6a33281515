package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"wingscafe/backend/internal/domain"
)

type productCreateRequest struct {
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Price    FormValue `json:"price"`
	Quantity FormValue `json:"quantity"`
}

type productUpdateRequest struct {
	Name     *string   `json:"name"`
	Category *string   `json:"category"`
	Price    FormValue `json:"price"`
	Quantity FormValue `json:"quantity"`
}

type stockRequest struct {
	Amount FormValue `json:"amount"`
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products := a.service.ListProducts(r.Context(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleLowStock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"products": a.service.ListLowStock(r.Context())})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := a.service.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	price, err := parseMoney("price", req.Price)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	quantity, err := parseWholeNumber("quantity", req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	product, err := a.service.CreateProduct(r.Context(), domain.ProductInput{
		Name:     req.Name,
		Category: req.Category,
		Price:    price,
		Quantity: quantity,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	price, err := parseOptionalMoney("price", req.Price)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	quantity, err := parseOptionalWholeNumber("quantity", req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	product, err := a.service.UpdateProduct(r.Context(), mux.Vars(r)["id"], domain.ProductPatch{
		Name:     optionalText(req.Name),
		Category: optionalText(req.Category),
		Price:    price,
		Quantity: quantity,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	removed, err := a.service.DeleteProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted":       id,
		"removed_sales": removed,
	})
}

func (a *API) handleAddStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	amount, err := parseWholeNumber("amount", req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	product, err := a.service.AddStock(r.Context(), mux.Vars(r)["id"], amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}
