package repository

import (
	"time"

	"github.com/cogniboard/cogniboard-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email (emails are stored lowercased)
	FindByEmail(email string) (*models.User, error)

	// List retrieves all users ordered by ID
	List() ([]models.User, error)
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// CreateWithOwner creates a project and its owner membership atomically
	CreateWithOwner(project *models.Project, ownerID uint64) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// ListForUser lists projects the user is a member of
	ListForUser(userID uint64) ([]models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project and cascades to members, tasks and comments
	Delete(id uint64) error

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMember) error

	// UpdateMemberRole changes a member's role, refusing to demote the last owner
	UpdateMemberRole(projectID, userID uint64, role models.ProjectRole) (*models.ProjectMember, error)

	// RemoveMember removes a member, refusing to remove the last owner
	RemoveMember(projectID, userID uint64) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// ListMembers lists all members of a project with users preloaded
	ListMembers(projectID uint64) ([]models.ProjectMember, error)

	// ListProjectIDsForUser lists the IDs of projects the user is a member of
	ListProjectIDsForUser(userID uint64) ([]uint64, error)
}

// TaskFilter holds filtering options for listing tasks. All set filters
// combine with logical AND. ProjectIDs scopes results to the caller's
// projects and is always required.
type TaskFilter struct {
	ProjectIDs  []uint64
	AssigneeID  *uint64
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Skip        int
	Limit       int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks matching the filter, ordered by created_at then ID
	List(filter TaskFilter) ([]models.Task, error)

	// ListForProject retrieves all tasks of one project
	ListForProject(projectID uint64) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task and cascades to its comments
	Delete(id uint64) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a new comment
	Create(comment *models.Comment) error

	// FindByID finds a comment by ID
	FindByID(id uint64) (*models.Comment, error)

	// ListForTask retrieves a task's comments, newest first
	ListForTask(taskID uint64) ([]models.Comment, error)

	// Update updates a comment
	Update(comment *models.Comment) error

	// Delete deletes a comment
	Delete(id uint64) error
}
