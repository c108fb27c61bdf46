// api/handlers/comment_handler.go
package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/astro-datacenter/rundb/api/middleware"
	"github.com/astro-datacenter/rundb/api/models"
	"github.com/astro-datacenter/rundb/config"
	"github.com/astro-datacenter/rundb/internal/core"
	"github.com/astro-datacenter/rundb/internal/domain"
	"github.com/astro-datacenter/rundb/internal/storage"
)

// CommentHandler manages run and sequence comments.
type CommentHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(db *sql.DB, cfg *config.Config) *CommentHandler {
	return &CommentHandler{DB: db, Cfg: cfg}
}

// pathName returns the path parameter key if it is a plain identifier.
func pathName(c *gin.Context, key string) (string, error) {
	name := c.Param(key)
	if !core.IsValidIdentifier(name) {
		return "", fmt.Errorf("%w: '%s' is not a valid %s", core.ErrInvalidInput, name, key)
	}
	return name, nil
}

func checkNight(night string) error {
	if !core.IsValidNight(night) {
		return fmt.Errorf("%w: night '%s' must be given as YYYYMMDD", core.ErrInvalidInput, night)
	}
	return nil
}

// List returns the comments of a kind, optionally for one night and target.
func (h *CommentHandler) List(c *gin.Context) {
	name, err := pathName(c, "kind")
	if err != nil {
		_ = c.Error(err)
		return
	}
	kind := storage.CommentKind(name)
	filter := storage.CommentFilter{Night: c.Query("night")}
	if filter.Night != "" {
		if err := checkNight(filter.Night); err != nil {
			_ = c.Error(err)
			return
		}
	}
	if raw := c.Query("target"); raw != "" {
		target, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || target <= 0 {
			_ = c.Error(fmt.Errorf("%w: target must be a positive integer", core.ErrInvalidInput))
			return
		}
		filter.Target = target
	}

	comments, err := storage.ListComments(c.Request.Context(), h.DB, kind, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// Create adds a comment written by the authenticated user.
func (h *CommentHandler) Create(c *gin.Context) {
	kind, err := pathName(c, "kind")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	if err := checkNight(req.Night); err != nil {
		_ = c.Error(err)
		return
	}

	comment := domain.Comment{
		Night:   req.Night,
		Target:  req.Target,
		Comment: req.Comment,
		User:    c.GetString(middleware.UserNameKey),
	}
	key, err := storage.InsertComment(c.Request.Context(), h.DB, storage.CommentKind(kind), comment)
	if err != nil {
		_ = c.Error(err)
		return
	}
	comment.Key = key
	customLog.Printf("Comment %d added by %s", key, comment.User)
	c.JSON(http.StatusCreated, comment)
}

// Update replaces the text of an existing comment.
func (h *CommentHandler) Update(c *gin.Context) {
	kind, err := pathName(c, "kind")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	if err := checkNight(req.Night); err != nil {
		_ = c.Error(err)
		return
	}

	comment := domain.Comment{
		Night:   req.Night,
		Target:  req.Target,
		Comment: req.Comment,
		User:    c.GetString(middleware.UserNameKey),
	}
	err = storage.UpdateComment(c.Request.Context(), h.DB, storage.CommentKind(kind), comment, req.OldComment)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment updated successfully"})
}
