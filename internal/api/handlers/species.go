package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codyseavey/pogo-parser/backend/internal/models"
	"github.com/codyseavey/pogo-parser/backend/internal/services"
)

// Maximum lines accepted in one resolve request
const maxResolveLines = 5000

type SpeciesHandler struct {
	catalog    *services.CatalogService
	matcher    *services.SpeciesMatcher
	extractor  *services.TextExtractor
	unresolved *services.ResolutionLog
}

func NewSpeciesHandler(catalog *services.CatalogService, matcher *services.SpeciesMatcher, extractor *services.TextExtractor, unresolved *services.ResolutionLog) *SpeciesHandler {
	return &SpeciesHandler{
		catalog:    catalog,
		matcher:    matcher,
		extractor:  extractor,
		unresolved: unresolved,
	}
}

func (h *SpeciesHandler) ResolveSpecies(c *gin.Context) {
	var req models.ResolveSpeciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Lines) > maxResolveLines {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("too many lines (max %d)", maxResolveLines)})
		return
	}

	domain, err := h.catalog.Domain(req.Domain)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mentions := make([]services.Mention, len(req.Lines))
	for i, line := range req.Lines {
		mentions[i] = services.Mention{Text: line}
	}
	runID, matches, reports := h.run(c.Request.Context(), mentions, domain, req.Overrides)

	c.JSON(http.StatusOK, gin.H{
		"run_id":  runID,
		"matches": matches,
		"reports": reports,
	})
}

func (h *SpeciesHandler) ExtractSpecies(c *gin.Context) {
	var req models.ExtractSpeciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domain, err := h.catalog.Domain(req.Domain)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	root, err := services.ParseHTMLString(req.HTML)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	section := services.SelectSection(root, req.Section)
	if section == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "section not found"})
		return
	}

	mentions := h.extractor.Extract(section)
	if mentions == nil {
		mentions = []services.Mention{}
	}
	runID, matches, reports := h.run(c.Request.Context(), mentions, domain, nil)

	c.JSON(http.StatusOK, gin.H{
		"run_id":   runID,
		"mentions": mentions,
		"matches":  matches,
		"reports":  reports,
	})
}

// run resolves one batch and stores its reports under a fresh run id
func (h *SpeciesHandler) run(ctx context.Context, mentions []services.Mention, domain models.Domain, overrides map[string]string) (string, []models.SpeciesMatch, []services.ResolutionReport) {
	runID := uuid.NewString()
	collector := &services.ReportCollector{}
	matcher := h.matcher.WithOverrides(overrides).WithReporter(collector.Tee(services.LogReporter))
	matches := matcher.MatchMentions(mentions, domain)
	reports := collector.Reports()

	if h.unresolved != nil {
		if err := h.unresolved.Record(ctx, runID, "", reports); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	if reports == nil {
		reports = []services.ResolutionReport{}
	}
	return runID, matches, reports
}

func (h *SpeciesHandler) GetSpecies(c *gin.Context) {
	entry, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "species not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *SpeciesHandler) ListDomains(c *gin.Context) {
	sizes := make(gin.H)
	for _, name := range h.catalog.DomainNames() {
		d, _ := h.catalog.Domain(name)
		sizes[name] = len(d)
	}
	c.JSON(http.StatusOK, gin.H{"domains": sizes})
}

func (h *SpeciesHandler) ListUnresolved(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	rows, err := h.unresolved.List(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
