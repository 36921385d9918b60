package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cogniboard/cogniboard-api/internal/dto"
	apierrors "github.com/cogniboard/cogniboard-api/internal/errors"
	"github.com/cogniboard/cogniboard-api/internal/middleware"
	"github.com/cogniboard/cogniboard-api/internal/models"
	"github.com/cogniboard/cogniboard-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CommentHandler coordinates comment HTTP handlers.
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// ListTaskComments returns a task's comments, newest first.
// Access is enforced by RequireTaskAccess.
func (h *CommentHandler) ListTaskComments(c *gin.Context) {
	taskInterface, _ := c.Get("task")
	task := taskInterface.(models.Task)

	comments, err := h.commentService.ListCommentsForTask(task.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentListResponse(comments))
}

// CreateTaskComment adds a comment to a task. Any project member may do this.
func (h *CommentHandler) CreateTaskComment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskInterface, _ := c.Get("task")
	task := taskInterface.(models.Task)

	type CreateCommentRequest struct {
		Body string `json:"body" binding:"required"`
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Validation(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.CreateComment(task.ID, userID, req.Body)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment))
}

// UpdateComment replaces a comment's body. Author only.
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.Validation(c, "Invalid comment ID")
		return
	}

	type UpdateCommentRequest struct {
		Body string `json:"body" binding:"required"`
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Validation(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.UpdateComment(commentID, userID, req.Body)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentDTO(*comment))
}

// DeleteComment removes a comment. Author only.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.Validation(c, "Invalid comment ID")
		return
	}

	if err := h.commentService.DeleteComment(commentID, userID); err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
	})
}

func respondCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyCommentBody):
		apierrors.Validation(c, err.Error())
	case errors.Is(err, services.ErrCommentNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotCommentAuthor):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
