package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Login returns the provider consent URL for the login flow. No auth: this
// is how a session starts.
func (s *Server) Login(c *gin.Context) {
	url, err := s.calendarSvc.LoginURL()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ConnectCalendarURL returns a consent URL bound to the caller's uid so the
// redirect round-trip can be correlated back to them.
func (s *Server) ConnectCalendarURL(c *gin.Context) {
	url, err := s.calendarSvc.ConnectURL(userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// OAuthCallback terminates the OAuth redirect. On success the browser is
// sent back to the frontend; any failure aborts before anything is stored.
func (s *Server) OAuthCallback(c *gin.Context) {
	state := strings.TrimSpace(c.Query("state"))
	code := strings.TrimSpace(c.Query("code"))
	if state == "" || code == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.calendarSvc.Callback(c.Request.Context(), state, code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Redirect(http.StatusFound, result.RedirectURL)
}
