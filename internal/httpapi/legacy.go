package httpapi

import "net/http"

type legacyItem struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Fixed sample list served to older frontends. It is not backed by the ledger.
var legacyItems = []legacyItem{
	{ID: 1, Name: "Coffee", Quantity: 10},
	{ID: 2, Name: "Tea", Quantity: 15},
	{ID: 3, Name: "Cake", Quantity: 5},
}

const banner = "Wings Cafe Inventory Backend is running"

func (a *API) handleBanner(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(banner))
}

func (a *API) handleItems(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, legacyItems)
}
