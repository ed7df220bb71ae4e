package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/todo-service/internal/todo"
	"github.com/gogotex/todo-service/pkg/logger"
)

// Service is what the routes need from the todo service.
type Service interface {
	Create(ctx context.Context, content string) (*todo.Todo, error)
	List(ctx context.Context) ([]todo.Todo, error)
	Get(ctx context.Context, id int64) (*todo.Todo, error)
	Update(ctx context.Context, id int64, content string) (*todo.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// payload is the request body of create and update. content must be present
// (the empty string is accepted); id is decoded only so a wrongly typed id is
// rejected, its value is never used.
type payload struct {
	ID      *int64  `json:"id"`
	Content *string `json:"content" binding:"required"`
}

func RegisterTodoRoutes(r gin.IRoutes, svc Service) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"Hello": "Backend Developer"})
	})

	r.POST("/todos/", func(c *gin.Context) {
		var req payload
		if err := c.ShouldBindJSON(&req); err != nil {
			unprocessable(c, err)
			return
		}
		t, err := svc.Create(c.Request.Context(), *req.Content)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	})

	r.GET("/todos/", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/todos/:todo_id", func(c *gin.Context) {
		id, ok := todoID(c)
		if !ok {
			return
		}
		t, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	})

	r.PUT("/todos/:todo_id", func(c *gin.Context) {
		id, ok := todoID(c)
		if !ok {
			return
		}
		var req payload
		if err := c.ShouldBindJSON(&req); err != nil {
			unprocessable(c, err)
			return
		}
		// the path id wins over any id in the body
		t, err := svc.Update(c.Request.Context(), id, *req.Content)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	})

	r.DELETE("/todos/:todo_id", func(c *gin.Context) {
		id, ok := todoID(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Todo deleted"})
	})
}

func todoID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("todo_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "todo_id must be an integer"})
		return 0, false
	}
	return id, true
}

func unprocessable(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}

func fail(c *gin.Context, err error) {
	if errors.Is(err, todo.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": todo.ErrNotFound.Error()})
		return
	}
	logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal Server Error"})
}
