package models

import (
	"time"
)

// Event is an assembled fan-site event with its resolved spawns and date ranges
type Event struct {
	ID         string       `json:"id" gorm:"primaryKey"`
	Name       string       `json:"name" gorm:"not null;index"`
	SourceURL  string       `json:"source_url"`
	DatePhrase string       `json:"date_phrase"`
	Dateless   bool         `json:"dateless"` // date phrase present but unparseable, or missing
	Ranges     []EventRange `json:"ranges" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Spawns     []EventSpawn `json:"spawns" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Unresolved int          `json:"unresolved"` // lines that produced a report instead of a match
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type EventRange struct {
	ID      uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	EventID string `json:"-" gorm:"not null;index"`
	Start   int64  `json:"start"`
	End     int64  `json:"end"`
}

type EventSpawn struct {
	ID        uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	EventID   string `json:"-" gorm:"not null;index;uniqueIndex:idx_event_species"`
	Position  int    `json:"-"`
	SpeciesID string `json:"species_id" gorm:"not null;uniqueIndex:idx_event_species"`
	Shiny     bool   `json:"shiny"`
	Kind      string `json:"kind,omitempty"`
}

// DateRanges converts the stored rows back to plain ranges
func (e *Event) DateRanges() []DateRange {
	out := make([]DateRange, 0, len(e.Ranges))
	for _, r := range e.Ranges {
		out = append(out, DateRange{Start: r.Start, End: r.End})
	}
	return out
}

// Matches converts the stored spawn rows back to match results, in page order
func (e *Event) Matches() []SpeciesMatch {
	out := make([]SpeciesMatch, 0, len(e.Spawns))
	for _, s := range e.Spawns {
		out = append(out, SpeciesMatch{SpeciesID: s.SpeciesID, Shiny: s.Shiny, Kind: s.Kind})
	}
	return out
}

// UnresolvedMention records a line the species matcher refused to resolve
type UnresolvedMention struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID     string    `json:"run_id" gorm:"not null;index"`
	EventID   string    `json:"event_id,omitempty" gorm:"index"`
	Line      string    `json:"line" gorm:"not null"`
	Kind      string    `json:"kind" gorm:"not null;index"`
	Severity  string    `json:"severity"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
