// Package model defines the catalog and lead data types.
package model

// Units an item may be priced in.
const (
	UnitSession = "session"
	UnitVisit   = "visit"
	UnitPlan    = "plan"
	UnitPackage = "package"
)

// ValidUnits are the allowed pricing units.
var ValidUnits = map[string]bool{
	UnitSession: true,
	UnitVisit:   true,
	UnitPlan:    true,
	UnitPackage: true,
}

// UnitNames lists ValidUnits in display order.
var UnitNames = []string{UnitSession, UnitVisit, UnitPlan, UnitPackage}

// Document statuses. An empty status means the document predates the field.
const (
	StatusDraft = "draft"
	StatusReady = "ready"
)

// CatalogItem is a single fixed-price offering.
type CatalogItem struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Unit     string   `json:"unit"`
	Includes []string `json:"includes"`
	Excludes []string `json:"excludes"`
}

// CatalogPackage bundles several items at a combined price.
type CatalogPackage struct {
	CatalogItem
	BundledItems    []string `json:"bundledItems"`
	StandaloneTotal int      `json:"standaloneTotal"`
	Savings         int      `json:"savings"`
}

// CatalogSpecialty groups items under a routable slug. Item order is display order.
type CatalogSpecialty struct {
	Slug  string        `json:"slug"`
	Title string        `json:"title"`
	Items []CatalogItem `json:"items"`
}

// Teleconsult holds the teleconsultation terms. FirstConsult is always 0.
type Teleconsult struct {
	FirstConsult int    `json:"first_consult"`
	Note         string `json:"note"`
}

// CatalogCity is the root price document for one city.
type CatalogCity struct {
	City        string             `json:"city"`
	CitySlug    string             `json:"citySlug"`
	Currency    string             `json:"currency"`
	Status      string             `json:"status,omitempty"`
	Teleconsult Teleconsult        `json:"teleconsult"`
	Specialties []CatalogSpecialty `json:"specialties"`
	Packages    []CatalogPackage   `json:"packages,omitempty"`
	Disclaimers []string           `json:"disclaimers"`
}

// CatalogAddon is an extra billed outside specialty items.
type CatalogAddon struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Description string `json:"description"`
}
