package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	calendardomain "github.com/daybook-app/daybook/internal/calendar/domain"
)

type listEventsQuery struct {
	TimeMin    string `form:"timeMin"`
	TimeMax    string `form:"timeMax"`
	MaxResults int    `form:"maxResults"`
}

// ListCalendarEvents proxies an events listing through the backend, fronted
// by the short-TTL events cache. X-Cache reports whether it was served from
// cache.
func (s *Server) ListCalendarEvents(c *gin.Context) {
	var query listEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	uid := userID(c)
	req := calendardomain.ListEventsRequest{
		TimeMin:    strings.TrimSpace(query.TimeMin),
		TimeMax:    strings.TrimSpace(query.TimeMax),
		MaxResults: query.MaxResults,
	}

	key := req.CacheKey(uid)
	if payload, ok := s.eventsCache.Get(key); ok {
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json", payload)
		return
	}

	payload, err := s.calendarSvc.ListEvents(c.Request.Context(), uid, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.eventsCache.Set(key, payload)
	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json", payload)
}

type createEventRequest struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"allDay"`
}

// CreateCalendarEvent creates an event and invalidates the caller's cached
// listings so the next read sees it.
func (s *Server) CreateCalendarEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	uid := userID(c)
	payload, err := s.calendarSvc.CreateEvent(c.Request.Context(), uid, calendardomain.EventInput{
		Summary:     strings.TrimSpace(req.Summary),
		Description: req.Description,
		Location:    req.Location,
		Start:       strings.TrimSpace(req.Start),
		End:         strings.TrimSpace(req.End),
		AllDay:      req.AllDay,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.eventsCache.InvalidatePrefix(uid + "|")
	c.Data(http.StatusCreated, "application/json", payload)
}

// MintCalendarToken mints a fresh access token for the caller.
func (s *Server) MintCalendarToken(c *gin.Context) {
	token, err := s.calendarSvc.MintAccessToken(c.Request.Context(), userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// CalendarStatus reports whether the caller has a calendar connection.
func (s *Server) CalendarStatus(c *gin.Context) {
	connected, err := s.calendarSvc.Connected(c.Request.Context(), userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": connected})
}
