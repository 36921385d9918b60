package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cogniboard/cogniboard-api/internal/models"
	"github.com/cogniboard/cogniboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrEmptyCommentBody = errors.New("comment body cannot be empty")
	ErrNotCommentAuthor = errors.New("only the comment author can modify it")
)

// CommentService provides business logic for comment operations.
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
	}
}

// ListCommentsForTask returns a task's comments, newest first.
func (s *CommentService) ListCommentsForTask(taskID uint64) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListForTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// CreateComment adds a comment to a task on behalf of the author.
func (s *CommentService) CreateComment(taskID, authorID uint64, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyCommentBody
	}

	comment := &models.Comment{
		TaskID:   taskID,
		AuthorID: &authorID,
		Body:     body,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// GetComment retrieves a comment by ID.
func (s *CommentService) GetComment(commentID uint64) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}

// UpdateComment replaces a comment's body. Only the author may do this.
func (s *CommentService) UpdateComment(commentID, actorID uint64, body string) (*models.Comment, error) {
	comment, err := s.GetComment(commentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID == nil || *comment.AuthorID != actorID {
		return nil, ErrNotCommentAuthor
	}

	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyCommentBody
	}

	comment.Body = body
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

// DeleteComment removes a comment. Only the author may do this.
func (s *CommentService) DeleteComment(commentID, actorID uint64) error {
	comment, err := s.GetComment(commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID == nil || *comment.AuthorID != actorID {
		return ErrNotCommentAuthor
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}
