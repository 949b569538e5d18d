package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/codyseavey/pogo-parser/backend/internal/metrics"
	"github.com/codyseavey/pogo-parser/backend/internal/models"
)

// Domain names accepted by CatalogService.Domain
const (
	DomainStandard = "standard"
	DomainShadow   = "shadow"
	DomainMega     = "mega"
	DomainAll      = "all"
)

// CatalogService owns the species catalog and the named domains built from it
type CatalogService struct {
	catalog *models.Catalog
	domains map[string]models.Domain
}

// NewCatalogService loads a JSON array of species entries from path
func NewCatalogService(path string) (*CatalogService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var entries []models.SpeciesEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	svc, err := NewCatalogServiceFromEntries(entries)
	if err != nil {
		return nil, err
	}
	log.Printf("[Catalog] Loaded %d species entries from %s", svc.catalog.Len(), path)
	return svc, nil
}

// NewCatalogServiceFromEntries builds the service from in-memory entries
func NewCatalogServiceFromEntries(entries []models.SpeciesEntry) (*CatalogService, error) {
	catalog, err := models.NewCatalog(entries)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	metrics.CatalogEntries.Set(float64(catalog.Len()))

	return &CatalogService{
		catalog: catalog,
		domains: map[string]models.Domain{
			DomainStandard: StandardDomain(catalog),
			DomainShadow:   ShadowDomain(catalog),
			DomainMega:     MegaDomain(catalog),
			DomainAll:      FullDomain(catalog),
		},
	}, nil
}

func (s *CatalogService) Catalog() *models.Catalog {
	return s.catalog
}

// Get returns a single catalog entry by id
func (s *CatalogService) Get(id string) (models.SpeciesEntry, bool) {
	return s.catalog.Get(id)
}

// Domain returns the named domain. An empty name means the standard domain.
func (s *CatalogService) Domain(name string) (models.Domain, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DomainStandard
	}
	d, ok := s.domains[name]
	if !ok {
		return nil, fmt.Errorf("unknown domain %q (valid: %s)", name, strings.Join(s.DomainNames(), ", "))
	}
	return d, nil
}

// DomainNames lists the registered domain names
func (s *CatalogService) DomainNames() []string {
	names := make([]string, 0, len(s.domains))
	for name := range s.domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StandardDomain holds the plain (non-shadow, non-mega) canonical entries
func StandardDomain(c *models.Catalog) models.Domain {
	return c.Filter(func(e models.SpeciesEntry) bool {
		return !e.IsShadow && !e.IsMega && !e.IsAlias()
	})
}

func ShadowDomain(c *models.Catalog) models.Domain {
	return c.Filter(func(e models.SpeciesEntry) bool {
		return e.IsShadow && !e.IsAlias()
	})
}

func MegaDomain(c *models.Catalog) models.Domain {
	return c.Filter(func(e models.SpeciesEntry) bool {
		return e.IsMega && !e.IsAlias()
	})
}

// FullDomain holds every canonical entry, shadow and mega variants included
func FullDomain(c *models.Catalog) models.Domain {
	return c.Filter(func(e models.SpeciesEntry) bool {
		return !e.IsAlias()
	})
}

// DomainWithAliases extends d with the alias entries whose canonical target is in d
func DomainWithAliases(c *models.Catalog, d models.Domain) models.Domain {
	out := append(models.Domain(nil), d...)
	for _, e := range c.Entries() {
		if e.IsAlias() && d.Contains(e.AliasID) && !out.Contains(e.ID) {
			out = append(out, e)
		}
	}
	return out
}
