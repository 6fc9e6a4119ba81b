package lead

import (
	"github.com/glowheal/catalog/internal/catalog"
	"github.com/glowheal/catalog/internal/model"
)

// Enrich prices the lead's item codes against the catalog resolved for its
// city. Codes the catalog does not carry are kept in UnknownItems.
func Enrich(l *model.Lead, svc *catalog.Service) {
	res := svc.Resolve(l.City)
	l.DidFallback = res.DidFallback
	l.Resolved = nil
	l.UnknownItems = nil
	if res.Catalog != nil {
		l.CatalogCity = res.Catalog.CitySlug
	}

	for _, code := range l.Items {
		it := svc.GetItem(l.City, code)
		if it == nil {
			l.UnknownItems = append(l.UnknownItems, code)
			continue
		}
		l.Resolved = append(l.Resolved, model.LeadItem{
			Code:  it.Code,
			Name:  it.Name,
			Price: it.Price,
			Unit:  it.Unit,
		})
	}
}
