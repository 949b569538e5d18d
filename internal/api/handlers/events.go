package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pogo-parser/backend/internal/models"
	"github.com/codyseavey/pogo-parser/backend/internal/services"
)

type EventHandler struct {
	events *services.EventService
}

func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.events.Assemble(c.Request.Context(), services.EventInput{
		Name:       req.Name,
		DatePhrase: req.DatePhrase,
		HTML:       req.HTML,
		URL:        req.URL,
		Domain:     req.Domain,
		Section:    req.Section,
	})
	switch {
	case errors.Is(err, services.ErrInvalidEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, services.ErrSectionNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrEventNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, event)
}

// ListEvents hides dateless events unless ?dateless=true
func (h *EventHandler) ListEvents(c *gin.Context) {
	includeDateless := c.Query("dateless") == "true"
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	events, err := h.events.List(c.Request.Context(), includeDateless, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}
