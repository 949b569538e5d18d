package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pogo-parser/backend/internal/models"
	"github.com/codyseavey/pogo-parser/backend/internal/services"
)

type DateHandler struct {
	parser *services.DateRangeParser
}

func NewDateHandler(parser *services.DateRangeParser) *DateHandler {
	return &DateHandler{parser: parser}
}

// ParseDates returns the ranges for a phrase; an unparseable phrase yields an empty list
func (h *DateHandler) ParseDates(c *gin.Context) {
	var req models.ParseDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ranges := h.parser.Parse(req.Phrase)
	if ranges == nil {
		ranges = []models.DateRange{}
	}
	c.JSON(http.StatusOK, gin.H{
		"phrase":   req.Phrase,
		"location": h.parser.Location().String(),
		"ranges":   ranges,
	})
}
