package lead

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/glowheal/catalog/internal/model"
)

// Stats holds lead counts.
type Stats struct {
	Total     int          `json:"total"`
	Fallbacks int          `json:"fallbacks"`
	WhatsApp  int          `json:"whatsapp_confirm"`
	Cities    []CountStats `json:"cities"`
	Sources   []CountStats `json:"sources"`
}

// CountStats is one bucket of a breakdown.
type CountStats struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summarize counts leads per city and per source.
func Summarize(leads []model.Lead) *Stats {
	st := &Stats{Total: len(leads)}
	cities := make(map[string]int)
	sources := make(map[string]int)
	for _, l := range leads {
		cities[l.City]++
		sources[l.Source]++
		if l.DidFallback {
			st.Fallbacks++
		}
		if l.WhatsAppConfirm {
			st.WhatsApp++
		}
	}
	st.Cities = breakdown(cities)
	st.Sources = breakdown(sources)
	return st
}

func breakdown(m map[string]int) []CountStats {
	out := make([]CountStats, 0, len(m))
	for k, v := range m {
		out = append(out, CountStats{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// csvRow is the flat export shape of a lead.
type csvRow struct {
	ID            string `csv:"id"`
	CreatedAt     string `csv:"timestamp"`
	Name          string `csv:"name"`
	Phone         string `csv:"phone"`
	Email         string `csv:"email"`
	City          string `csv:"city"`
	CatalogCity   string `csv:"catalog_city"`
	DidFallback   bool   `csv:"did_fallback"`
	Concern       string `csv:"concern"`
	PreferredTime string `csv:"preferred_time"`
	VisitType     string `csv:"visit_type"`
	Source        string `csv:"source"`
	Items         string `csv:"items"`
	Total         int    `csv:"total"`
	Status        string `csv:"status"`
}

// WriteCSV writes leads as CSV with a header row.
func WriteCSV(w io.Writer, leads []model.Lead) error {
	rows := make([]*csvRow, 0, len(leads))
	for _, l := range leads {
		total := 0
		for _, it := range l.Resolved {
			total += it.Price
		}
		rows = append(rows, &csvRow{
			ID:            l.ID,
			CreatedAt:     l.CreatedAt.UTC().Format(time.RFC3339),
			Name:          l.Name,
			Phone:         l.Phone,
			Email:         l.Email,
			City:          l.City,
			CatalogCity:   l.CatalogCity,
			DidFallback:   l.DidFallback,
			Concern:       l.Concern,
			PreferredTime: l.PreferredTime,
			VisitType:     l.VisitType,
			Source:        l.Source,
			Items:         strings.Join(l.Items, ";"),
			Total:         total,
			Status:        l.Status,
		})
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
