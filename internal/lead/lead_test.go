package lead

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/glowheal/catalog/internal/catalog"
	"github.com/glowheal/catalog/internal/model"
)

func TestCheckRequiredFields(t *testing.T) {
	if err := Check(testLead("pune", "homepage")); err != nil {
		t.Fatalf("expected valid lead, got %v", err)
	}

	l := testLead("pune", "homepage")
	l.PreferredTime = "  "
	err := Check(l)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "preferredTime") {
		t.Errorf("expected error to name the field, got %v", err)
	}

	l = testLead("pune", "homepage")
	l.VisitType = "house-call"
	if err := Check(l); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected invalid visit type, got %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in, want string
		ok       bool
	}{
		{"9876543210", "919876543210", true},
		{"98765 43210", "919876543210", true},
		{"+91 98765-43210", "919876543210", true},
		{"09876543210", "919876543210", true},
		{"+44 20 7946 0958", "442079460958", true},
		{"12345", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := NormalizePhone(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("NormalizePhone(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWhatsAppURL(t *testing.T) {
	u, err := WhatsAppURL("98765 43210", "Hi there")
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if !strings.HasPrefix(u, "https://api.whatsapp.com/send?phone=919876543210&text=") {
		t.Errorf("unexpected url %q", u)
	}
	if strings.Contains(u, " ") {
		t.Errorf("message not encoded: %q", u)
	}
	if _, err := WhatsAppURL("nope", "x"); err == nil {
		t.Error("expected error for invalid phone")
	}
}

func TestEnrichFallback(t *testing.T) {
	svc := catalog.NewService(catalog.NewEmbeddedSource())

	l := testLead("mumbai", "homepage")
	l.Items = []string{"THERAPY_STD", "NOPE"}
	l.Resolved = nil
	Enrich(l, svc)

	if !l.DidFallback || l.CatalogCity != "pune" {
		t.Errorf("expected pune fallback, got city=%q fallback=%v", l.CatalogCity, l.DidFallback)
	}
	if len(l.Resolved) != 1 || l.Resolved[0].Price != 1499 {
		t.Fatalf("expected THERAPY_STD at 1499, got %+v", l.Resolved)
	}
	if len(l.UnknownItems) != 1 || l.UnknownItems[0] != "NOPE" {
		t.Errorf("expected NOPE unknown, got %v", l.UnknownItems)
	}
}

func TestEnrichReadyCity(t *testing.T) {
	svc := catalog.NewService(catalog.NewEmbeddedSource())

	l := testLead("bengaluru", "homepage")
	l.Items = []string{"BLR_THERAPY_STD"}
	Enrich(l, svc)

	if l.DidFallback || l.CatalogCity != "bengaluru" {
		t.Errorf("expected bengaluru without fallback, got %q %v", l.CatalogCity, l.DidFallback)
	}
	if len(l.Resolved) != 1 || l.Resolved[0].Price != 1699 {
		t.Errorf("unexpected resolved items %+v", l.Resolved)
	}
}

func TestSummarize(t *testing.T) {
	leads := []model.Lead{
		{City: "pune", Source: "homepage"},
		{City: "pune", Source: "booking", WhatsAppConfirm: true},
		{City: "mumbai", Source: "homepage", DidFallback: true},
	}
	st := Summarize(leads)
	if st.Total != 3 || st.Fallbacks != 1 || st.WhatsApp != 1 {
		t.Errorf("unexpected totals %+v", st)
	}
	if len(st.Cities) != 2 || st.Cities[0].Name != "pune" || st.Cities[0].Count != 2 {
		t.Errorf("unexpected city breakdown %+v", st.Cities)
	}
	if st.Sources[0].Name != "homepage" || st.Sources[0].Count != 2 {
		t.Errorf("unexpected source breakdown %+v", st.Sources)
	}
}

func TestWriteCSV(t *testing.T) {
	l := testLead("pune", "homepage")
	l.ID = "LEAD_1"
	l.Items = []string{"DERM_CONSULT", "THERAPY_STD"}
	l.Resolved = []model.LeadItem{{Code: "DERM_CONSULT", Price: 799}, {Code: "THERAPY_STD", Price: 1499}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []model.Lead{*l}); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d records", len(records))
	}
	header := records[0]
	row := make(map[string]string)
	for i, h := range header {
		row[h] = records[1][i]
	}
	if row["id"] != "LEAD_1" || row["city"] != "pune" {
		t.Errorf("unexpected row %v", row)
	}
	if row["items"] != "DERM_CONSULT;THERAPY_STD" {
		t.Errorf("unexpected items %q", row["items"])
	}
	if row["total"] != "2298" {
		t.Errorf("expected total 2298, got %q", row["total"])
	}
}
