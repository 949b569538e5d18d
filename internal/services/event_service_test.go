package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/pogo-parser/backend/internal/database"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	return db
}

func newTestEventService(t *testing.T) (*EventService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	catalog, err := NewCatalogServiceFromEntries(testEntries)
	if err != nil {
		t.Fatal(err)
	}
	matcher, err := NewSpeciesMatcher(catalog.Catalog(), MatcherOptions{})
	if err != nil {
		t.Fatal(err)
	}
	dates := NewDateRangeParser(time.UTC).WithClock(fixedClock(2025, time.January, 1))
	fetcher := NewPageFetcher(PageFetcherConfig{RatePerSecond: 100, Burst: 10})
	return NewEventService(db, catalog, matcher, NewTextExtractor(ExtractorConfig{}), dates, fetcher), db
}

func TestAssembleEvent(t *testing.T) {
	svc, _ := newTestEventService(t)
	ctx := context.Background()

	result, err := svc.Assemble(ctx, EventInput{
		Name:       "Alolan Spotlight",
		DatePhrase: "Saturday, June 21, 2025, from 2:00 p.m. to 5:00 p.m. local time",
		HTML:       eventPage,
		Section:    "#wild",
	})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	event := result.Event
	if event.ID == "" || event.Dateless || event.Unresolved != 0 {
		t.Errorf("Assemble() event = %+v", event)
	}
	if len(result.Mentions) != 2 {
		t.Errorf("Assemble() mentions = %+v, want 2", result.Mentions)
	}

	stored, err := svc.Get(ctx, event.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	matches := stored.Matches()
	if len(matches) != 2 || matches[0].SpeciesID != "vulpix_alola" || matches[1].SpeciesID != "machamp_shadow" {
		t.Errorf("stored spawns = %+v", matches)
	}
	if !matches[1].Shiny {
		t.Error("machamp_shadow should be shiny")
	}
	ranges := stored.DateRanges()
	if len(ranges) != 1 || ranges[0].Start != ms(2025, time.June, 21, 14, 0) || ranges[0].End != ms(2025, time.June, 21, 17, 0) {
		t.Errorf("stored ranges = %+v", ranges)
	}
}

func TestAssembleDatelessEventRecordsUnresolved(t *testing.T) {
	svc, db := newTestEventService(t)
	ctx := context.Background()

	result, err := svc.Assemble(ctx, EventInput{
		Name:       "Mystery Event",
		DatePhrase: "Coming soon",
		HTML:       "<ul><li>Pikachu</li><li>Professor Willow</li></ul>",
	})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !result.Event.Dateless {
		t.Error("event with unparseable date should be dateless")
	}
	if result.Event.Unresolved != 1 || len(result.Reports) != 1 {
		t.Errorf("Unresolved = %d, reports = %+v, want 1", result.Event.Unresolved, result.Reports)
	}

	rows, err := NewResolutionLog(db).List(ctx, string(ReportUnmappedSpecialCase), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].EventID != result.Event.ID || rows[0].Line != "Professor Willow" {
		t.Errorf("unresolved rows = %+v", rows)
	}

	dated, err := svc.List(ctx, false, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(dated) != 0 {
		t.Errorf("List(dated only) = %d events, want 0", len(dated))
	}
	all, err := svc.List(ctx, true, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || len(all[0].Spawns) != 1 {
		t.Errorf("List(all) = %+v", all)
	}
}

func TestAssembleFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(eventPage))
	}))
	defer server.Close()

	svc, _ := newTestEventService(t)
	result, err := svc.Assemble(context.Background(), EventInput{
		Name:       "Raid Day",
		DatePhrase: "July 5, 2025, from 2:00 p.m. to 5:00 p.m.",
		URL:        server.URL,
		Section:    "#raids",
		Domain:     "all",
	})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	spawns := result.Event.Spawns
	if len(spawns) != 1 || spawns[0].SpeciesID != "giratina_origin" || spawns[0].Kind != "5-Star" {
		t.Errorf("spawns = %+v", spawns)
	}
	if result.Event.SourceURL != server.URL {
		t.Errorf("SourceURL = %q, want %q", result.Event.SourceURL, server.URL)
	}
}

func TestAssembleErrors(t *testing.T) {
	svc, _ := newTestEventService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input EventInput
		want  error
	}{
		{"missing name", EventInput{HTML: "<p>Pikachu</p>"}, ErrInvalidEvent},
		{"missing page", EventInput{Name: "x"}, ErrInvalidEvent},
		{"unknown domain", EventInput{Name: "x", HTML: "<p>Pikachu</p>", Domain: "legendary"}, ErrInvalidEvent},
		{"missing section", EventInput{Name: "x", HTML: "<p>Pikachu</p>", Section: "#raids"}, ErrSectionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Assemble(ctx, tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Assemble() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := svc.Get(ctx, "does-not-exist"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Get(unknown) error = %v, want %v", err, ErrEventNotFound)
	}
}
