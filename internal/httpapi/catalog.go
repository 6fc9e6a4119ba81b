package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glowheal/catalog/internal/catalog"
	"github.com/glowheal/catalog/internal/model"
	"github.com/glowheal/catalog/internal/quote"
)

// CatalogResponse is a resolution plus its display notice.
type CatalogResponse struct {
	Catalog       *model.CatalogCity `json:"catalog"`
	DidFallback   bool               `json:"didFallback"`
	RequestedCity string             `json:"requestedCity"`
	Notice        string             `json:"notice,omitempty"`
}

// selectedCity picks the city from ?city=, then the city cookie, then the
// reference city.
func selectedCity(c *gin.Context) string {
	if city := c.Query("city"); city != "" {
		return city
	}
	if city, err := c.Cookie(CityCookie); err == nil && city != "" {
		return city
	}
	return string(catalog.Reference)
}

func (s *Server) getSelectedCatalog(c *gin.Context) {
	s.writeResolution(c, selectedCity(c))
}

func (s *Server) getCatalog(c *gin.Context) {
	s.writeResolution(c, c.Param("city"))
}

func (s *Server) writeResolution(c *gin.Context, city string) {
	res := s.catalog.Resolve(city)
	if res.Catalog == nil {
		s.logger.Error("no catalog available", zap.String("city", city))
		JSONError(c, http.StatusServiceUnavailable, "Catalog unavailable", "")
		return
	}
	c.JSON(http.StatusOK, CatalogResponse{
		Catalog:       res.Catalog,
		DidFallback:   res.DidFallback,
		RequestedCity: res.RequestedCity,
		Notice:        res.Notice(),
	})
}

func (s *Server) getItem(c *gin.Context) {
	city, code := c.Param("city"), c.Param("code")
	it := s.catalog.GetItem(city, code)
	if it == nil {
		JSONError(c, http.StatusNotFound, "Item not found", code)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item":       it,
		"priceLabel": catalog.FormatPrice(it.Price),
	})
}

func (s *Server) getSpecialty(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.GetItemsBySpecialty(c.Param("city"), c.Param("slug")))
}

func (s *Server) getPackage(c *gin.Context) {
	code := c.Param("code")
	p := s.catalog.GetPackage(c.Param("city"), code)
	if p == nil {
		JSONError(c, http.StatusNotFound, "Package not found", code)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) getAddons(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.GetAddons(c.Param("city")))
}

type quoteRequest struct {
	City  string   `json:"city"`
	Items []string `json:"items" binding:"required,min=1"`
}

func (s *Server) createQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "Invalid quote request", err.Error())
		return
	}
	if req.City == "" {
		req.City = selectedCity(c)
	}
	c.JSON(http.StatusOK, quote.Build(s.catalog, req.City, req.Items))
}
