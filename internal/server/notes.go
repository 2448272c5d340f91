package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	notesdomain "github.com/daybook-app/daybook/internal/notes/domain"
)

func (s *Server) ListNotes(c *gin.Context) {
	notes, err := s.noteSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notes})
}

type createNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) CreateNote(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	note, err := s.noteSvc.Create(c.Request.Context(), userID(c), notesdomain.CreateNoteRequest{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": note})
}

type updateNoteRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func (s *Server) UpdateNote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	note, err := s.noteSvc.Update(c.Request.Context(), userID(c), id, notesdomain.UpdateNoteRequest{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": note})
}

func (s *Server) DeleteNote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.noteSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
