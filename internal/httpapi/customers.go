package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"wingscafe/backend/internal/domain"
)

type customerRequest struct {
	Name          *string   `json:"name"`
	Email         *string   `json:"email"`
	Phone         *string   `json:"phone"`
	Address       *string   `json:"address"`
	LoyaltyPoints FormValue `json:"loyalty_points"`
	Birthday      FormValue `json:"birthday"`
}

type customerView struct {
	domain.Customer
	BirthdayToday bool `json:"birthday_today"`
}

func (a *API) viewCustomer(c domain.Customer) customerView {
	return customerView{Customer: c, BirthdayToday: c.BirthdayOn(a.today())}
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers := a.service.ListCustomers(r.Context(), r.URL.Query().Get("q"))
	views := make([]customerView, 0, len(customers))
	for _, c := range customers {
		views = append(views, a.viewCustomer(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": views})
}

func (a *API) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := a.service.GetCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": a.viewCustomer(customer)})
}

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	in, err := req.patch()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	customer, err := a.service.CreateCustomer(r.Context(), domain.CustomerInput{
		Name:          deref(in.Name),
		Email:         deref(in.Email),
		Phone:         deref(in.Phone),
		Address:       deref(in.Address),
		LoyaltyPoints: deref(in.LoyaltyPoints),
		Birthday:      in.Birthday,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"customer": customer})
}

func (a *API) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	patch, err := req.patch()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	customer, err := a.service.UpdateCustomer(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (a *API) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.service.DeleteCustomer(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (req customerRequest) patch() (domain.CustomerPatch, error) {
	points, err := parseOptionalWholeNumber("loyalty_points", req.LoyaltyPoints)
	if err != nil {
		return domain.CustomerPatch{}, err
	}
	birthday, err := parseOptionalDate("birthday", req.Birthday)
	if err != nil {
		return domain.CustomerPatch{}, err
	}
	return domain.CustomerPatch{
		Name:          optionalText(req.Name),
		Email:         optionalText(req.Email),
		Phone:         optionalText(req.Phone),
		Address:       optionalText(req.Address),
		LoyaltyPoints: points,
		Birthday:      birthday,
	}, nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
