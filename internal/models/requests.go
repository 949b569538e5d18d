package models

// ResolveSpeciesRequest asks for a batch of lines to be resolved against a domain
type ResolveSpeciesRequest struct {
	Lines     []string          `json:"lines" binding:"required"`
	Domain    string            `json:"domain"`    // standard, shadow, mega or all
	Overrides map[string]string `json:"overrides"` // extra name corrections for this batch
}

// ExtractSpeciesRequest runs text extraction over a page fragment before resolving
type ExtractSpeciesRequest struct {
	HTML    string `json:"html" binding:"required"`
	Domain  string `json:"domain"`
	Section string `json:"section"`
}

type ParseDatesRequest struct {
	Phrase string `json:"phrase"`
}

type CreateEventRequest struct {
	Name       string `json:"name" binding:"required"`
	DatePhrase string `json:"date_phrase"`
	HTML       string `json:"html"`
	URL        string `json:"url"`
	Domain     string `json:"domain"`
	Section    string `json:"section"`
}
