package catalog

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/glowheal/catalog/internal/model"
)

// Resolution is the outcome of resolving a requested city to a catalog.
type Resolution struct {
	// Catalog is nil only when the reference catalog itself failed to load.
	Catalog *model.CatalogCity `json:"catalog"`
	// DidFallback is set when reference data stands in for the requested city.
	DidFallback bool `json:"didFallback"`
	// RequestedCity is the lowercased input, not the resolved slug.
	RequestedCity string `json:"requestedCity"`
}

// Notice is the disclosure shown when reference pricing replaces the
// requested city's pricing. It is empty when no fallback happened.
func (r Resolution) Notice() string {
	if !r.DidFallback || r.Catalog == nil {
		return ""
	}
	return fmt.Sprintf("Showing %s pricing. %s pricing is not yet available.",
		r.Catalog.City, City(r.RequestedCity).Name())
}

type resolved struct {
	catalog     *model.CatalogCity
	didFallback bool
}

// Service answers catalog lookups. Loaded documents are shared between callers
// and must not be modified.
type Service struct {
	src    Source
	logger *zap.Logger
	cache  bool

	mu   sync.RWMutex
	memo map[City]resolved
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for fallback and load diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache memoises successful resolutions per resolved city.
func WithCache(enabled bool) Option {
	return func(s *Service) { s.cache = enabled }
}

// NewService returns a Service reading documents from src.
func NewService(src Source, opts ...Option) *Service {
	s := &Service{
		src:    src,
		logger: zap.NewNop(),
		memo:   make(map[City]resolved),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Resolve picks the catalog to show for citySlug. Unsupported cities are
// silently treated as the reference city; supported cities whose catalog is
// missing, unreadable or not ready fall back to the reference catalog.
func (s *Service) Resolve(citySlug string) Resolution {
	requested := strings.ToLower(citySlug)
	city, ok := ParseCity(requested)
	if !ok {
		s.logger.Debug("unsupported city, using reference",
			zap.String("city", citySlug), zap.String("reference", string(Reference)))
		city = Reference
	}

	r := s.resolveCity(city)
	return Resolution{
		Catalog:       r.catalog,
		DidFallback:   r.didFallback,
		RequestedCity: requested,
	}
}

func (s *Service) resolveCity(city City) resolved {
	if s.cache {
		s.mu.RLock()
		r, ok := s.memo[city]
		s.mu.RUnlock()
		if ok {
			return r
		}
	}

	r := s.load(city)

	// A failed reference load may be transient on a directory source.
	if s.cache && r.catalog != nil {
		s.mu.Lock()
		s.memo[city] = r
		s.mu.Unlock()
	}
	return r
}

func (s *Service) load(city City) resolved {
	if city == Reference {
		doc, err := s.src.Catalog(Reference)
		if err != nil {
			s.logger.Error("reference catalog unavailable",
				zap.String("city", string(Reference)), zap.Error(err))
			return resolved{}
		}
		return resolved{catalog: doc}
	}

	doc, err := s.src.Catalog(city)
	if err != nil {
		s.logger.Warn("catalog load failed, falling back",
			zap.String("city", string(city)), zap.Error(err))
		return s.fallback()
	}
	if !IsReady(doc) {
		s.logger.Warn("catalog not ready, falling back",
			zap.String("city", string(city)), zap.String("reference", string(Reference)))
		return s.fallback()
	}
	return resolved{catalog: doc}
}

func (s *Service) fallback() resolved {
	doc, err := s.src.Catalog(Reference)
	if err != nil {
		s.logger.Error("reference catalog unavailable",
			zap.String("city", string(Reference)), zap.Error(err))
		return resolved{}
	}
	return resolved{catalog: doc, didFallback: true}
}

// GetCatalog resolves citySlug and drops the fallback metadata.
func (s *Service) GetCatalog(citySlug string) *model.CatalogCity {
	return s.Resolve(citySlug).Catalog
}

// GetItem finds an item by code across all specialties of the resolved
// catalog. A miss returns nil.
func (s *Service) GetItem(citySlug, code string) *model.CatalogItem {
	c := s.GetCatalog(citySlug)
	if c == nil {
		return nil
	}
	for _, sp := range c.Specialties {
		for _, it := range sp.Items {
			if it.Code == code {
				item := it
				return &item
			}
		}
	}
	return nil
}

// GetItemsBySpecialty returns the specialty's items in stored order, or an
// empty slice when the catalog or specialty is absent.
func (s *Service) GetItemsBySpecialty(citySlug, specialtySlug string) []model.CatalogItem {
	c := s.GetCatalog(citySlug)
	if c == nil {
		return []model.CatalogItem{}
	}
	for _, sp := range c.Specialties {
		if sp.Slug == specialtySlug {
			items := make([]model.CatalogItem, len(sp.Items))
			copy(items, sp.Items)
			return items
		}
	}
	return []model.CatalogItem{}
}

// GetPackage finds a bundle by code in the resolved catalog.
func (s *Service) GetPackage(citySlug, code string) *model.CatalogPackage {
	c := s.GetCatalog(citySlug)
	if c == nil {
		return nil
	}
	for _, p := range c.Packages {
		if p.Code == code {
			pkg := p
			return &pkg
		}
	}
	return nil
}

// GetAddons returns the add-ons for the city whose catalog was resolved, so a
// fallback yields the reference city's add-ons. Missing lists yield an empty slice.
func (s *Service) GetAddons(citySlug string) []model.CatalogAddon {
	c := s.GetCatalog(citySlug)
	if c == nil {
		return []model.CatalogAddon{}
	}
	city, ok := ParseCity(c.CitySlug)
	if !ok {
		return []model.CatalogAddon{}
	}
	addons, err := s.src.Addons(city)
	if err != nil {
		s.logger.Debug("no add-ons", zap.String("city", c.CitySlug), zap.Error(err))
		return []model.CatalogAddon{}
	}
	return addons
}
