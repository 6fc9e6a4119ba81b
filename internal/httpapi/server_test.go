package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glowheal/catalog/internal/catalog"
	"github.com/glowheal/catalog/internal/lead"
	"github.com/glowheal/catalog/internal/model"
	"github.com/glowheal/catalog/internal/quote"
)

func newTestRouter(t *testing.T, o Options) (*gin.Engine, lead.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := lead.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	svc := catalog.NewService(catalog.NewEmbeddedSource(), catalog.WithCache(true))
	return NewRouter(svc, store, nil, o), store
}

func do(r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t, Options{})
	w := do(r, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
}

func TestGetCatalogFallback(t *testing.T) {
	r, _ := newTestRouter(t, Options{})

	w := do(r, http.MethodGet, "/api/catalog/mumbai", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	res := decode[CatalogResponse](t, w)
	if !res.DidFallback || res.Catalog.CitySlug != "pune" || res.RequestedCity != "mumbai" {
		t.Errorf("unexpected resolution %+v", res)
	}
	if !strings.Contains(res.Notice, "Mumbai pricing is not yet available") {
		t.Errorf("unexpected notice %q", res.Notice)
	}

	res = decode[CatalogResponse](t, do(r, http.MethodGet, "/api/catalog/bengaluru", nil))
	if res.DidFallback || res.Catalog.CitySlug != "bengaluru" || res.Notice != "" {
		t.Errorf("unexpected resolution %+v", res)
	}
}

func TestSelectedCatalogCityOrder(t *testing.T) {
	r, _ := newTestRouter(t, Options{})
	cookie := &http.Cookie{Name: CityCookie, Value: "bengaluru"}

	res := decode[CatalogResponse](t, do(r, http.MethodGet, "/api/catalog", nil))
	if res.Catalog.CitySlug != "pune" {
		t.Errorf("expected reference city by default, got %q", res.Catalog.CitySlug)
	}

	res = decode[CatalogResponse](t, do(r, http.MethodGet, "/api/catalog", nil, cookie))
	if res.Catalog.CitySlug != "bengaluru" {
		t.Errorf("expected cookie city, got %q", res.Catalog.CitySlug)
	}

	res = decode[CatalogResponse](t, do(r, http.MethodGet, "/api/catalog?city=mumbai", nil, cookie))
	if res.RequestedCity != "mumbai" || !res.DidFallback {
		t.Errorf("expected query to win over cookie, got %+v", res)
	}
}

func TestGetItem(t *testing.T) {
	r, _ := newTestRouter(t, Options{})

	w := do(r, http.MethodGet, "/api/catalog/mumbai/items/THERAPY_STD", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[struct {
		Item       model.CatalogItem `json:"item"`
		PriceLabel string            `json:"priceLabel"`
	}](t, w)
	if body.Item.Price != 1499 || body.PriceLabel != "₹1,499" {
		t.Errorf("unexpected item %+v", body)
	}

	w = do(r, http.MethodGet, "/api/catalog/pune/items/NONEXISTENT_CODE", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if e := decode[ErrorResponse](t, w); e.Error == "" {
		t.Error("expected JSON error body")
	}
}

func TestGetSpecialtyAlwaysArray(t *testing.T) {
	r, _ := newTestRouter(t, Options{})

	items := decode[[]model.CatalogItem](t, do(r, http.MethodGet, "/api/catalog/pune/specialties/mental-health", nil))
	if len(items) == 0 || items[0].Code != "THERAPY_STD" {
		t.Errorf("unexpected items %+v", items)
	}

	w := do(r, http.MethodGet, "/api/catalog/pune/specialties/astrology", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %d %q", w.Code, w.Body.String())
	}
}

func TestGetPackageAndAddons(t *testing.T) {
	r, _ := newTestRouter(t, Options{})

	p := decode[model.CatalogPackage](t, do(r, http.MethodGet, "/api/catalog/pune/packages/PKG_SKIN_GLOW", nil))
	if p.Price+p.Savings != p.StandaloneTotal {
		t.Errorf("unexpected package %+v", p)
	}
	if w := do(r, http.MethodGet, "/api/catalog/pune/packages/NOPE", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	addons := decode[[]model.CatalogAddon](t, do(r, http.MethodGet, "/api/catalog/mumbai/addons", nil))
	if len(addons) == 0 || addons[0].Code != "ADDON_LAB_CBC" {
		t.Errorf("expected pune add-ons after fallback, got %+v", addons)
	}
}

func TestCreateQuote(t *testing.T) {
	r, _ := newTestRouter(t, Options{})

	w := do(r, http.MethodPost, "/api/quote", map[string]any{
		"city":  "pune",
		"items": []string{"DERM_CONSULT", "NOPE"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	q := decode[quote.Quote](t, w)
	if q.Subtotal != 799 || len(q.UnknownItems) != 1 {
		t.Errorf("unexpected quote %+v", q)
	}

	if w := do(r, http.MethodPost, "/api/quote", map[string]any{"city": "pune"}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without items, got %d", w.Code)
	}
}

func validLead() map[string]any {
	return map[string]any{
		"name":            "Asha",
		"phone":           "9876543210",
		"concern":         "acne",
		"city":            "mumbai",
		"preferredTime":   "evening",
		"source":          "free_consult_hero",
		"whatsappConfirm": true,
		"items":           []string{"DERM_CONSULT"},
	}
}

func TestSubmitLead(t *testing.T) {
	r, store := newTestRouter(t, Options{})

	w := do(r, http.MethodPost, "/api/leads/submit", validLead())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	res := decode[LeadResponse](t, w)
	if !res.Success || !strings.HasPrefix(res.LeadID, lead.IDPrefix) {
		t.Errorf("unexpected response %+v", res)
	}
	if !strings.HasPrefix(res.WhatsAppURL, "https://api.whatsapp.com/send?phone=919876543210") {
		t.Errorf("unexpected whatsapp url %q", res.WhatsAppURL)
	}

	stored, err := store.Get(context.Background(), res.LeadID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.DidFallback || stored.CatalogCity != "pune" {
		t.Errorf("expected lead priced from pune, got %+v", stored)
	}
	if len(stored.Resolved) != 1 || stored.Resolved[0].Price != 799 {
		t.Errorf("unexpected resolved items %+v", stored.Resolved)
	}
}

func TestSubmitLeadMissingField(t *testing.T) {
	r, _ := newTestRouter(t, Options{})

	for _, field := range lead.Required {
		body := validLead()
		delete(body, field)
		w := do(r, http.MethodPost, "/api/leads/submit", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", field, w.Code)
			continue
		}
		e := decode[ErrorResponse](t, w)
		if e.Error != "Missing required field: "+field {
			t.Errorf("%s: unexpected error %q", field, e.Error)
		}
	}
}

func TestCreateBookingIdempotent(t *testing.T) {
	r, _ := newTestRouter(t, Options{})
	body := map[string]any{
		"id":        "BOOKING_123",
		"contact":   map[string]any{"name": "Ravi", "phone": "+91 98765 43210"},
		"city":      "bengaluru",
		"visitType": "online",
		"items":     []string{"BLR_THERAPY_STD"},
	}

	w := do(r, http.MethodPost, "/api/bookings", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	first := decode[LeadResponse](t, w)
	if first.BookingID != "BOOKING_123" || first.Lead.Resolved[0].Price != 1699 {
		t.Errorf("unexpected booking %+v", first)
	}

	w = do(r, http.MethodPost, "/api/bookings", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", w.Code)
	}
	second := decode[LeadResponse](t, w)
	if !second.Lead.CreatedAt.Equal(first.Lead.CreatedAt) {
		t.Error("replay must return the original booking")
	}
}

func TestCreateBookingValidation(t *testing.T) {
	r, _ := newTestRouter(t, Options{})

	w := do(r, http.MethodPost, "/api/bookings", map[string]any{
		"contact": map[string]any{"name": "Ravi", "phone": "9876543210"},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without id, got %d", w.Code)
	}

	w = do(r, http.MethodPost, "/api/bookings", map[string]any{
		"id":        "BOOKING_9",
		"contact":   map[string]any{"name": "Ravi", "phone": "9876543210"},
		"visitType": "teleport",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad visit type, got %d", w.Code)
	}
}

func TestRateLimitSubmissions(t *testing.T) {
	r, _ := newTestRouter(t, Options{LeadRatePerMin: 2})

	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodPost, "/api/leads/submit", validLead()); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	if w := do(r, http.MethodPost, "/api/leads/submit", validLead()); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	// Catalog reads are not limited.
	if w := do(r, http.MethodGet, "/api/catalog/pune", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200 for reads, got %d", w.Code)
	}
}

func submitVia(r http.Handler, remoteAddr, forwardedFor string) int {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(validLead())
	req := httptest.NewRequest(http.MethodPost, "/api/leads/submit", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	req.Header.Set("X-Real-IP", forwardedFor)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r, _ := newTestRouter(t, Options{LeadRatePerMin: 2})

	var codes []int
	for i := 0; i < 4; i++ {
		codes = append(codes, submitVia(r, "203.0.113.7:4000", fmt.Sprintf("10.0.0.%d", i)))
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests || codes[3] != http.StatusTooManyRequests {
		t.Errorf("expected rotated X-Forwarded-For to be limited, got %v", codes)
	}
}

func TestRateLimitHonoursTrustedProxy(t *testing.T) {
	r, _ := newTestRouter(t, Options{LeadRatePerMin: 1, TrustedProxies: []string{"10.1.0.0/16"}})

	for i := 0; i < 3; i++ {
		if code := submitVia(r, "10.1.2.3:4000", fmt.Sprintf("198.51.100.%d", i)); code != http.StatusOK {
			t.Fatalf("client %d behind proxy: expected 200, got %d", i, code)
		}
	}
	if code := submitVia(r, "10.1.2.3:4000", "198.51.100.0"); code != http.StatusTooManyRequests {
		t.Errorf("expected repeat client to be limited, got %d", code)
	}
}

func TestInvalidTrustedProxiesTrustNone(t *testing.T) {
	r, _ := newTestRouter(t, Options{LeadRatePerMin: 1, TrustedProxies: []string{"not-an-ip"}})

	if code := submitVia(r, "203.0.113.9:4000", "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := submitVia(r, "203.0.113.9:4000", "10.0.0.2"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", code)
	}
}

func TestPanicRecovered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if e := decode[ErrorResponse](t, w); e.Error != "Internal Server Error" {
		t.Errorf("unexpected body %+v", e)
	}
}
