package routes

import (
	"net/http"

	"github.com/sydney-cole/oscars-ballot/internal/catalog"
	"github.com/sydney-cole/oscars-ballot/internal/deps"

	pkghttpx "github.com/sydney-cole/oscars-ballot/pkg/httpx"
)

type categoryView struct {
	Name     string            `json:"name"`
	Nominees []catalog.Display `json:"nominees"`
}

type catalogView struct {
	Ceremony        catalog.Ceremony `json:"ceremony"`
	TotalCategories int              `json:"total_categories"`
	Categories      []categoryView   `json:"categories"`
}

// Catalog handles GET /catalog. The catalog is fixed, so the view is built once.
func Catalog(d deps.ServerDeps) http.HandlerFunc {
	cat := d.Service.Catalog()
	view := catalogView{Ceremony: cat.Ceremony, TotalCategories: cat.Len()}
	for _, c := range cat.Categories() {
		cv := categoryView{Name: c.Name, Nominees: make([]catalog.Display, 0, len(c.Nominees))}
		for _, n := range c.Nominees {
			cv.Nominees = append(cv.Nominees, n.Display())
		}
		view.Categories = append(view.Categories, cv)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		pkghttpx.WriteJSON(w, http.StatusOK, view)
	}
}
