package dto

import (
	"time"

	"github.com/cogniboard/cogniboard-api/internal/models"
)

// CommentDTO represents a comment in API responses. AuthorID is null when
// the author account has been removed.
type CommentDTO struct {
	ID        uint64    `json:"id"`
	TaskID    uint64    `json:"task_id"`
	AuthorID  *uint64   `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Author    *UserDTO  `json:"author,omitempty"`
}

// CommentListResponse wraps the comment collection under its named key.
type CommentListResponse struct {
	Comments []CommentDTO `json:"comments"`
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	dto := CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}

	// Include author if preloaded
	if comment.Author != nil && comment.Author.ID != 0 {
		author := ToUserDTO(*comment.Author)
		dto.Author = &author
	}

	return dto
}

// ToCommentListResponse converts comments to the wrapped list response
func ToCommentListResponse(comments []models.Comment) CommentListResponse {
	items := make([]CommentDTO, len(comments))
	for i, comment := range comments {
		items[i] = ToCommentDTO(comment)
	}
	return CommentListResponse{Comments: items}
}
