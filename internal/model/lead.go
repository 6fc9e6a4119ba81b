package model

import "time"

// Lead statuses.
const (
	LeadStatusNew = "new"
)

// Lead is a captured enquiry or booking request.
type Lead struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email,omitempty"`
	Concern         string     `json:"concern,omitempty"`
	City            string     `json:"city"`
	PreferredTime   string     `json:"preferredTime,omitempty"`
	VisitType       string     `json:"visitType,omitempty"`
	Source          string     `json:"source"`
	WhatsAppConfirm bool       `json:"whatsappConfirm"`
	Items           []string   `json:"items,omitempty"`
	Resolved        []LeadItem `json:"resolvedItems,omitempty"`
	UnknownItems    []string   `json:"unknownItems,omitempty"`
	CatalogCity     string     `json:"catalogCity,omitempty"`
	DidFallback     bool       `json:"didFallback"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"timestamp"`
}

// LeadItem is a catalog item as priced when the lead was captured.
type LeadItem struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	Unit  string `json:"unit"`
}

// Visit types accepted by the booking form.
var ValidVisitTypes = map[string]bool{
	"in-clinic": true,
	"online":    true,
}
