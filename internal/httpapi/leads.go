package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glowheal/catalog/internal/catalog"
	"github.com/glowheal/catalog/internal/lead"
	"github.com/glowheal/catalog/internal/model"
)

type leadRequest struct {
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	Concern         string    `json:"concern"`
	City            string    `json:"city"`
	PreferredTime   string    `json:"preferredTime"`
	Source          string    `json:"source"`
	WhatsAppConfirm bool      `json:"whatsappConfirm"`
	Items           []string  `json:"items"`
	Timestamp       time.Time `json:"timestamp"`
}

type bookingRequest struct {
	ID      string `json:"id"`
	Contact struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"contact"`
	Condition struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"condition"`
	City            string   `json:"city"`
	VisitType       string   `json:"visitType"`
	PreferredTime   string   `json:"preferredTime"`
	WhatsAppConfirm bool     `json:"whatsappConfirm"`
	Items           []string `json:"items"`
}

// LeadResponse acknowledges a stored lead or booking.
type LeadResponse struct {
	Success     bool        `json:"success"`
	LeadID      string      `json:"leadId,omitempty"`
	BookingID   string      `json:"bookingId,omitempty"`
	Message     string      `json:"message"`
	WhatsAppURL string      `json:"whatsappUrl,omitempty"`
	Lead        *model.Lead `json:"lead,omitempty"`
}

func (s *Server) submitLead(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	l := &model.Lead{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Concern:         req.Concern,
		City:            req.City,
		PreferredTime:   req.PreferredTime,
		Source:          req.Source,
		WhatsAppConfirm: req.WhatsAppConfirm,
		Items:           req.Items,
		CreatedAt:       req.Timestamp,
	}
	if err := lead.Check(l); err != nil {
		JSONError(c, http.StatusBadRequest, errorMessage(err), "")
		return
	}

	stored, _, ok := s.store(c, l)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, LeadResponse{
		Success:     true,
		LeadID:      stored.ID,
		Message:     "Lead captured successfully",
		WhatsAppURL: s.whatsApp(stored),
	})
}

func (s *Server) createBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.ID == "" || req.Contact.Name == "" || req.Contact.Phone == "" {
		JSONError(c, http.StatusBadRequest, "Missing required fields", "id, contact.name and contact.phone are required")
		return
	}

	l := &model.Lead{
		ID:              req.ID,
		Name:            req.Contact.Name,
		Phone:           req.Contact.Phone,
		Email:           req.Contact.Email,
		Concern:         req.Condition.Name,
		City:            req.City,
		PreferredTime:   req.PreferredTime,
		VisitType:       req.VisitType,
		Source:          "booking",
		WhatsAppConfirm: req.WhatsAppConfirm,
		Items:           req.Items,
	}
	if l.City == "" {
		l.City = selectedCity(c)
	}
	if err := lead.CheckContact(l); err != nil {
		JSONError(c, http.StatusBadRequest, errorMessage(err), "")
		return
	}

	stored, created, ok := s.store(c, l)
	if !ok {
		return
	}
	status, msg := http.StatusCreated, "Booking received successfully"
	if !created {
		status, msg = http.StatusOK, "Booking already received"
	}
	c.JSON(status, LeadResponse{
		Success:     true,
		BookingID:   stored.ID,
		Message:     msg,
		WhatsAppURL: s.whatsApp(stored),
		Lead:        stored,
	})
}

// store enriches and persists l, writing an error reply on failure.
func (s *Server) store(c *gin.Context, l *model.Lead) (*model.Lead, bool, bool) {
	lead.Enrich(l, s.catalog)
	stored, created, err := s.leads.Put(c.Request.Context(), l)
	if err != nil {
		if errors.Is(err, lead.ErrInvalid) {
			JSONError(c, http.StatusBadRequest, errorMessage(err), "")
			return nil, false, false
		}
		s.logger.Error("store lead", zap.String("id", l.ID), zap.Error(err))
		JSONError(c, http.StatusInternalServerError, "Failed to process submission", "")
		return nil, false, false
	}
	s.logger.Info("lead captured",
		zap.String("id", stored.ID),
		zap.String("city", stored.City),
		zap.String("source", stored.Source),
		zap.Bool("created", created),
		zap.Bool("did_fallback", stored.DidFallback))
	return stored, created, true
}

func (s *Server) whatsApp(l *model.Lead) string {
	if !l.WhatsAppConfirm {
		return ""
	}
	city, ok := catalog.ParseCity(l.City)
	if !ok {
		city = catalog.Reference
	}
	u, err := lead.WhatsAppURL(l.Phone, lead.ConfirmationMessage(l.Name, city.Name()))
	if err != nil {
		return ""
	}
	return u
}

// errorMessage strips the ErrInvalid prefix for display.
func errorMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), lead.ErrInvalid.Error()+": ")
	if msg == "" {
		return msg
	}
	r, n := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[n:]
}
