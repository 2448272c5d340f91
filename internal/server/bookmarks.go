package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	bookmarksdomain "github.com/daybook-app/daybook/internal/bookmarks/domain"
)

func (s *Server) ListBookmarks(c *gin.Context) {
	bookmarks, err := s.bookmarkSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bookmarks})
}

type createBookmarkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (s *Server) CreateBookmark(c *gin.Context) {
	var req createBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	bookmark, err := s.bookmarkSvc.Create(c.Request.Context(), userID(c), bookmarksdomain.CreateBookmarkRequest{
		Title: req.Title,
		URL:   req.URL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": bookmark})
}

func (s *Server) DeleteBookmark(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.bookmarkSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
