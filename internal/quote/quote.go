// Package quote prices a selection of catalog codes for one city.
package quote

import (
	"github.com/glowheal/catalog/internal/catalog"
	"github.com/glowheal/catalog/internal/model"
)

// Line is one priced entry of a quote.
type Line struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	Kind       string `json:"kind"`
	Price      int    `json:"price"`
	PriceLabel string `json:"priceLabel"`
}

// Line kinds.
const (
	KindItem    = "item"
	KindPackage = "package"
	KindAddon   = "addon"
)

// Quote is an itemised estimate built from one resolved catalog.
type Quote struct {
	City             string   `json:"city"`
	CitySlug         string   `json:"citySlug"`
	RequestedCity    string   `json:"requestedCity"`
	DidFallback      bool     `json:"didFallback"`
	Notice           string   `json:"notice,omitempty"`
	Lines            []Line   `json:"lines"`
	Subtotal         int      `json:"subtotal"`
	SubtotalLabel    string   `json:"subtotalLabel"`
	FirstConsult     string   `json:"firstConsult"`
	FirstConsultNote string   `json:"firstConsultNote,omitempty"`
	Disclaimers      []string `json:"disclaimers"`
	UnknownItems     []string `json:"unknownItems,omitempty"`
}

// Build resolves city once and prices each code against that catalog, looking
// in specialty items, then packages, then add-ons. Codes found nowhere are
// listed in UnknownItems. A nil catalog yields an empty quote with every code
// unknown.
func Build(svc *catalog.Service, city string, codes []string) *Quote {
	res := svc.Resolve(city)
	q := &Quote{
		RequestedCity: res.RequestedCity,
		DidFallback:   res.DidFallback,
		Notice:        res.Notice(),
		Lines:         []Line{},
		Disclaimers:   []string{},
	}
	if res.Catalog == nil {
		q.UnknownItems = append(q.UnknownItems, codes...)
		q.SubtotalLabel = catalog.FormatPrice(0)
		return q
	}

	c := res.Catalog
	q.City = c.City
	q.CitySlug = c.CitySlug
	q.FirstConsult = catalog.FormatPrice(c.Teleconsult.FirstConsult)
	q.FirstConsultNote = c.Teleconsult.Note
	q.Disclaimers = append(q.Disclaimers, c.Disclaimers...)

	var addons []model.CatalogAddon
	addonsLoaded := false

	for _, code := range codes {
		if it := findItem(c, code); it != nil {
			q.add(it.Code, it.Name, it.Unit, KindItem, it.Price)
			continue
		}
		if p := findPackage(c, code); p != nil {
			q.add(p.Code, p.Name, p.Unit, KindPackage, p.Price)
			continue
		}
		if !addonsLoaded {
			// Add-ons follow the resolved catalog, not the requested city.
			addons = svc.GetAddons(c.CitySlug)
			addonsLoaded = true
		}
		if a := findAddon(addons, code); a != nil {
			q.add(a.Code, a.Name, "", KindAddon, a.Price)
			continue
		}
		q.UnknownItems = append(q.UnknownItems, code)
	}
	q.SubtotalLabel = catalog.FormatPrice(q.Subtotal)
	return q
}

func (q *Quote) add(code, name, unit, kind string, price int) {
	q.Lines = append(q.Lines, Line{
		Code:       code,
		Name:       name,
		Unit:       unit,
		Kind:       kind,
		Price:      price,
		PriceLabel: catalog.FormatPrice(price),
	})
	q.Subtotal += price
}

func findItem(c *model.CatalogCity, code string) *model.CatalogItem {
	for _, sp := range c.Specialties {
		for i := range sp.Items {
			if sp.Items[i].Code == code {
				return &sp.Items[i]
			}
		}
	}
	return nil
}

func findPackage(c *model.CatalogCity, code string) *model.CatalogPackage {
	for i := range c.Packages {
		if c.Packages[i].Code == code {
			return &c.Packages[i]
		}
	}
	return nil
}

func findAddon(addons []model.CatalogAddon, code string) *model.CatalogAddon {
	for i := range addons {
		if addons[i].Code == code {
			return &addons[i]
		}
	}
	return nil
}
