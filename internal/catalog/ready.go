package catalog

import (
	"strings"

	"github.com/glowheal/catalog/internal/model"
)

// Placeholder markers left in catalogs that are still being negotiated.
const (
	PlaceholderCodePrefix = "TODO_"
	PlaceholderNameMarker = "[TODO"
)

// placeholderTextMarkers are the markers the validator looks for in free text.
var placeholderTextMarkers = []string{PlaceholderNameMarker, "TODO:"}

// HasPlaceholderText reports whether s carries any placeholder marker.
func HasPlaceholderText(s string) bool {
	for _, m := range placeholderTextMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// IsReady reports whether a catalog may be shown as that city's pricing.
// It stops at the first placeholder code, placeholder name or zero price among
// specialty items. A document explicitly marked draft is never ready.
//
// Zero prices are rejected here even though the free first consultation is
// priced 0: that sentinel lives in Teleconsult, not in specialty items.
func IsReady(c *model.CatalogCity) bool {
	if c == nil || c.Status == model.StatusDraft {
		return false
	}
	for _, sp := range c.Specialties {
		for _, it := range sp.Items {
			if strings.HasPrefix(it.Code, PlaceholderCodePrefix) ||
				strings.Contains(it.Name, PlaceholderNameMarker) ||
				it.Price == 0 {
				return false
			}
		}
	}
	return true
}
