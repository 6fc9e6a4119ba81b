// Package lead captures enquiries and booking requests and persists them.
package lead

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/glowheal/catalog/internal/model"
)

var (
	// ErrNotFound is returned when a lead does not exist.
	ErrNotFound = errors.New("lead not found")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid lead")
)

// IDPrefix is prepended to generated lead ids.
const IDPrefix = "LEAD_"

// ListParams holds parameters for listing leads.
type ListParams struct {
	City   string
	Source string
	Limit  int
}

// Store defines the lead storage interface.
type Store interface {
	// Put stores l unless a lead with the same ID exists. It returns the stored
	// lead and whether this call created it.
	Put(ctx context.Context, l *model.Lead) (*model.Lead, bool, error)

	// Get retrieves a lead by ID.
	Get(ctx context.Context, id string) (*model.Lead, error)

	// List returns leads newest first.
	List(ctx context.Context, p ListParams) ([]model.Lead, error)

	// Close closes the store.
	Close() error
}

var (
	entropyMu sync.Mutex
	entropy   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewID returns a fresh, time-ordered lead id.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return IDPrefix + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Required names the fields a form submission must carry. The booking form
// additionally requires a client supplied id.
var Required = []string{"name", "phone", "concern", "city", "preferredTime", "source"}

// Check verifies the required fields of a form submission. The returned error
// wraps ErrInvalid and names the first missing field.
func Check(l *model.Lead) error {
	values := map[string]string{
		"name":          l.Name,
		"phone":         l.Phone,
		"concern":       l.Concern,
		"city":          l.City,
		"preferredTime": l.PreferredTime,
		"source":        l.Source,
	}
	for _, f := range Required {
		if strings.TrimSpace(values[f]) == "" {
			return fmt.Errorf("%w: missing required field: %s", ErrInvalid, f)
		}
	}
	return CheckContact(l)
}

// CheckContact verifies the fields every stored lead needs.
func CheckContact(l *model.Lead) error {
	if strings.TrimSpace(l.Name) == "" || strings.TrimSpace(l.Phone) == "" {
		return fmt.Errorf("%w: missing contact name or phone", ErrInvalid)
	}
	if _, err := NormalizePhone(l.Phone); err != nil {
		return err
	}
	if l.VisitType != "" && !model.ValidVisitTypes[l.VisitType] {
		return fmt.Errorf("%w: invalid visit type: %s", ErrInvalid, l.VisitType)
	}
	return nil
}

// prepare stamps defaults on a lead about to be stored.
func prepare(l *model.Lead) {
	if l.ID == "" {
		l.ID = NewID()
	}
	if l.Status == "" {
		l.Status = model.LeadStatusNew
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	l.City = strings.ToLower(strings.TrimSpace(l.City))
}

func matches(l *model.Lead, p ListParams) bool {
	if p.City != "" && l.City != strings.ToLower(p.City) {
		return false
	}
	if p.Source != "" && l.Source != p.Source {
		return false
	}
	return true
}

func limitOf(p ListParams) int {
	if p.Limit <= 0 {
		return 50
	}
	return p.Limit
}

func sortNewestFirst(leads []model.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
}
