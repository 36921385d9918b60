package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cogniboard/cogniboard-api/internal/models"
	"github.com/cogniboard/cogniboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTaskTitle  = errors.New("task title cannot be empty")
	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrInvalidPriority   = errors.New("invalid task priority")
	ErrAssigneeNotMember = errors.New("assignee must be a member of the task's project")
	ErrNotProjectMember  = errors.New("not a member of this project")
)

// TaskService provides business logic for task operations.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

// ListTasksForProject returns all tasks of a project.
func (s *TaskService) ListTasksForProject(projectID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListForProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTaskInput represents parameters to create a task.
type CreateTaskInput struct {
	ProjectID   uint64
	Title       string
	Description string
	AssigneeID  *uint64
	Priority    models.TaskPriority
	DueDate     *time.Time
}

// CreateTask creates a task in a project. New tasks start in todo.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidTaskTitle
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	if input.AssigneeID != nil {
		if err := s.ensureProjectMember(input.ProjectID, *input.AssigneeID); err != nil {
			if errors.Is(err, ErrNotProjectMember) {
				return nil, ErrAssigneeNotMember
			}
			return nil, err
		}
	}

	task := &models.Task{
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		AssigneeID:  input.AssigneeID,
		Priority:    input.Priority,
		Status:      models.TaskStatusTodo,
		DueDate:     input.DueDate,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ListTasksInput holds filters for the cross-project task listing.
type ListTasksInput struct {
	UserID      uint64
	ProjectID   *uint64
	AssigneeID  *uint64
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Skip        int
	Limit       int
}

// ListTasks returns tasks matching the filters, scoped to projects the user
// is a member of. A project_id filter outside that scope yields an empty
// result rather than an error.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	projectIDs, err := s.projectRepo.ListProjectIDsForUser(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project memberships: %w", err)
	}

	if input.ProjectID != nil {
		scoped := false
		for _, id := range projectIDs {
			if id == *input.ProjectID {
				scoped = true
				break
			}
		}
		if !scoped {
			return []models.Task{}, nil
		}
		projectIDs = []uint64{*input.ProjectID}
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{
		ProjectIDs:  projectIDs,
		AssigneeID:  input.AssigneeID,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDateFrom: input.DueDateFrom,
		DueDateTo:   input.DueDateTo,
		Skip:        input.Skip,
		Limit:       input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask retrieves a task by ID with its assignee preloaded.
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// TaskPatch holds the fields of a sparse task update. Nil pointer fields are
// left untouched; AssigneeSet and DueDateSet distinguish "absent" from an
// explicit null.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	AssigneeSet bool
	AssigneeID  *uint64
	DueDateSet  bool
	DueDate     *time.Time
}

// UpdateTask applies a sparse patch. Status transitions are unconstrained:
// any status may move to any other. The assignee, when set, must be a member
// of the task's project.
func (s *TaskService) UpdateTask(taskID uint64, patch TaskPatch) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, ErrInvalidTaskTitle
		}
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *patch.Priority
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *patch.Status
	}
	if patch.AssigneeSet {
		if patch.AssigneeID != nil {
			if err := s.ensureProjectMember(task.ProjectID, *patch.AssigneeID); err != nil {
				if errors.Is(err, ErrNotProjectMember) {
					return nil, ErrAssigneeNotMember
				}
				return nil, err
			}
		}
		task.AssigneeID = patch.AssigneeID
	}
	if patch.DueDateSet {
		task.DueDate = patch.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	updated, err := s.taskRepo.FindByID(task.ID, "Assignee")
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	return updated, nil
}

// DeleteTask removes a task and its comments.
func (s *TaskService) DeleteTask(taskID uint64) error {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ensureProjectMember verifies that a user belongs to a project.
func (s *TaskService) ensureProjectMember(projectID, userID uint64) error {
	_, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotProjectMember
		}
		return fmt.Errorf("failed to verify project membership: %w", err)
	}
	return nil
}
