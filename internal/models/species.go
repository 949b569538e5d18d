package models

import (
	"fmt"
	"sort"
)

// SpeciesEntry is one physical variant in the species catalog. Shadow and
// mega variants are separate entries sharing the base species' Dex.
type SpeciesEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Dex      int    `json:"dex"`
	IsShadow bool   `json:"shadow"`
	IsMega   bool   `json:"mega"`
	AliasID  string `json:"alias_id,omitempty"` // canonical entry this one duplicates
}

// IsAlias reports whether the entry is a cosmetic duplicate of another entry
func (e SpeciesEntry) IsAlias() bool {
	return e.AliasID != ""
}

// Catalog is the read-only species reference loaded once per run
type Catalog struct {
	entries []SpeciesEntry
	byID    map[string]int
	byDex   map[int][]int
}

// NewCatalog indexes entries and validates ids, dex numbers and alias targets
func NewCatalog(entries []SpeciesEntry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]SpeciesEntry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
		byDex:   make(map[int][]int),
	}

	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %q has no id", e.Name)
		}
		if e.Dex <= 0 {
			return nil, fmt.Errorf("catalog entry %s has invalid dex %d", e.ID, e.Dex)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %s", e.ID)
		}
		idx := len(c.entries)
		c.entries = append(c.entries, e)
		c.byID[e.ID] = idx
		c.byDex[e.Dex] = append(c.byDex[e.Dex], idx)
	}

	for _, e := range c.entries {
		if e.AliasID == "" {
			continue
		}
		if _, ok := c.byID[e.AliasID]; !ok {
			return nil, fmt.Errorf("catalog entry %s aliases unknown id %s", e.ID, e.AliasID)
		}
	}

	return c, nil
}

// Get returns the entry with the given id
func (c *Catalog) Get(id string) (SpeciesEntry, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return SpeciesEntry{}, false
	}
	return c.entries[idx], true
}

// ByDex returns every entry sharing a national dex number, in catalog order
func (c *Catalog) ByDex(dex int) []SpeciesEntry {
	indices := c.byDex[dex]
	out := make([]SpeciesEntry, 0, len(indices))
	for _, idx := range indices {
		out = append(out, c.entries[idx])
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of all entries in catalog order
func (c *Catalog) Entries() []SpeciesEntry {
	out := make([]SpeciesEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Filter builds a domain of the entries accepted by keep, in catalog order
func (c *Catalog) Filter(keep func(SpeciesEntry) bool) Domain {
	var d Domain
	for _, e := range c.entries {
		if keep(e) {
			d = append(d, e)
		}
	}
	return d
}

// Domain is a caller-chosen subset of the catalog that scopes one match call.
// The same Dex may appear several times, once per physical form.
type Domain []SpeciesEntry

// Contains reports whether the domain holds the given id
func (d Domain) Contains(id string) bool {
	for _, e := range d {
		if e.ID == id {
			return true
		}
	}
	return false
}

// IDs returns the entry ids sorted, mostly useful for logging
func (d Domain) IDs() []string {
	ids := make([]string, len(d))
	for i, e := range d {
		ids[i] = e.ID
	}
	sort.Strings(ids)
	return ids
}

// SpeciesMatch is a resolved mention
type SpeciesMatch struct {
	SpeciesID string `json:"species_id"`
	Shiny     bool   `json:"shiny"`
	Kind      string `json:"kind,omitempty"` // raid tier or event category, carried through as-is
}
