package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	tasksdomain "github.com/daybook-app/daybook/internal/tasks/domain"
)

func parseID(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) ListTasks(c *gin.Context) {
	tasks, err := s.taskSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

type createTaskRequest struct {
	Title    string        `json:"title"`
	ParentID *snowflake.ID `json:"parentId"`
}

func (s *Server) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	task, err := s.taskSvc.Create(c.Request.Context(), userID(c), tasksdomain.CreateTaskRequest{
		Title:    req.Title,
		ParentID: req.ParentID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": task})
}

type updateTaskRequest struct {
	Title *string `json:"title"`
	Done  *bool   `json:"done"`
}

func (s *Server) UpdateTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	task, err := s.taskSvc.Update(c.Request.Context(), userID(c), id, tasksdomain.UpdateTaskRequest{
		Title: req.Title,
		Done:  req.Done,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (s *Server) DeleteTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.taskSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
