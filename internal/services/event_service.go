package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codyseavey/pogo-parser/backend/internal/metrics"
	"github.com/codyseavey/pogo-parser/backend/internal/models"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrInvalidEvent    = errors.New("invalid event")
	ErrSectionNotFound = errors.New("section not found in page")
)

const defaultEventLimit = 50

// EventInput is one event page to assemble. HTML wins over URL when both are set.
type EventInput struct {
	Name       string `json:"name"`
	DatePhrase string `json:"date_phrase"`
	HTML       string `json:"html"`
	URL        string `json:"url"`
	Domain     string `json:"domain"`
	Section    string `json:"section"` // "#id", ".class" or tag name scoping extraction
}

// EventResult is an assembled event together with what the run saw
type EventResult struct {
	Event    *models.Event      `json:"event"`
	Mentions []Mention          `json:"mentions"`
	Reports  []ResolutionReport `json:"reports"`
}

// EventService assembles events from fan-site pages and stores them
type EventService struct {
	db        *gorm.DB
	catalog   *CatalogService
	matcher   *SpeciesMatcher
	extractor *TextExtractor
	dates     *DateRangeParser
	fetcher   *PageFetcher
}

func NewEventService(db *gorm.DB, catalog *CatalogService, matcher *SpeciesMatcher, extractor *TextExtractor, dates *DateRangeParser, fetcher *PageFetcher) *EventService {
	return &EventService{
		db:        db,
		catalog:   catalog,
		matcher:   matcher,
		extractor: extractor,
		dates:     dates,
		fetcher:   fetcher,
	}
}

// Assemble extracts and resolves the species of one event page, parses its
// date phrase and persists the result. Events whose phrase yields no range
// are kept with Dateless set.
func (s *EventService) Assemble(ctx context.Context, in EventInput) (*EventResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}
	if in.HTML == "" && in.URL == "" {
		return nil, fmt.Errorf("%w: html or url is required", ErrInvalidEvent)
	}

	domain, err := s.catalog.Domain(in.Domain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	markup := in.HTML
	if markup == "" {
		if s.fetcher == nil {
			return nil, fmt.Errorf("%w: page fetching is disabled", ErrInvalidEvent)
		}
		body, err := s.fetcher.Fetch(ctx, in.URL)
		if err != nil {
			return nil, err
		}
		markup = string(body)
	}

	root, err := ParseHTMLString(markup)
	if err != nil {
		return nil, err
	}
	section := SelectSection(root, in.Section)
	if section == nil {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, in.Section)
	}

	mentions := s.extractor.Extract(section)
	collector := &ReportCollector{}
	matches := s.matcher.WithReporter(collector.Tee(LogReporter)).MatchMentions(mentions, domain)
	reports := collector.Reports()
	ranges := s.dates.Parse(in.DatePhrase)

	event := &models.Event{
		ID:         uuid.NewString(),
		Name:       name,
		SourceURL:  in.URL,
		DatePhrase: in.DatePhrase,
		Dateless:   len(ranges) == 0,
		Unresolved: len(reports),
	}
	for _, r := range ranges {
		event.Ranges = append(event.Ranges, models.EventRange{EventID: event.ID, Start: r.Start, End: r.End})
	}
	for i, m := range matches {
		event.Spawns = append(event.Spawns, models.EventSpawn{
			EventID:   event.ID,
			Position:  i,
			SpeciesID: m.SpeciesID,
			Shiny:     m.Shiny,
			Kind:      m.Kind,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to save event: %w", err)
		}
		return recordReports(tx, event.ID, event.ID, reports)
	})
	if err != nil {
		return nil, err
	}

	metrics.EventsAssembledTotal.WithLabelValues(strconv.FormatBool(!event.Dateless)).Inc()
	if event.Dateless && strings.TrimSpace(in.DatePhrase) != "" {
		log.Printf("Warning: event %q has unparseable date phrase %q", name, in.DatePhrase)
	}
	log.Printf("Assembled event %s (%s): %d spawns, %d ranges, %d unresolved",
		event.ID, name, len(event.Spawns), len(event.Ranges), event.Unresolved)

	return &EventResult{Event: event, Mentions: mentions, Reports: reports}, nil
}

// Get loads one event with its ranges and spawns
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := s.preload(s.db.WithContext(ctx)).First(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return &event, nil
}

// List returns events newest first. Dateless events are skipped unless includeDateless is set.
func (s *EventService) List(ctx context.Context, includeDateless bool, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	query := s.preload(s.db.WithContext(ctx)).Order("created_at DESC").Limit(limit)
	if !includeDateless {
		query = query.Where("dateless = ?", false)
	}

	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *EventService) preload(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Ranges", func(db *gorm.DB) *gorm.DB { return db.Order("start ASC") }).
		Preload("Spawns", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}
