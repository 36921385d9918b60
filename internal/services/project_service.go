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
	ErrProjectNotFound      = errors.New("project not found")
	ErrInvalidProjectName   = errors.New("project name cannot be empty")
	ErrInvalidRole          = errors.New("role must be owner or member")
	ErrAlreadyProjectMember = errors.New("user is already a member of this project")
	ErrMemberNotFound       = errors.New("project member not found")
	ErrLastOwner            = errors.New("project must retain at least one owner")
)

// ProjectService provides business logic for project and membership operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	CreatorID   uint64
}

// CreateProject creates a project with the creator as its sole owner.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
	}

	if err := s.projectRepo.CreateWithOwner(project, input.CreatorID); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjectsForUser returns projects the user belongs to.
func (s *ProjectService) ListProjectsForUser(userID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProjectWithMembers returns a project and all of its members.
func (s *ProjectService) GetProjectWithMembers(projectID uint64) (*models.Project, []models.ProjectMember, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, fmt.Errorf("failed to find project: %w", err)
	}

	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list project members: %w", err)
	}

	return project, members, nil
}

// ProjectPatch holds the fields of a sparse project update. Nil fields are
// left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
}

// UpdateProject applies a sparse patch to a project.
func (s *ProjectService) UpdateProject(projectID uint64, patch ProjectPatch) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = *patch.Name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project and everything it owns.
func (s *ProjectService) DeleteProject(projectID uint64) error {
	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// ListMembers returns all members of a project.
func (s *ProjectService) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}

// AddMemberInput represents parameters to add a project member.
type AddMemberInput struct {
	ProjectID uint64
	UserID    uint64
	Role      models.ProjectRole
}

// AddMember adds a user to a project with the given role.
func (s *ProjectService) AddMember(input AddMemberInput) (*models.ProjectMember, error) {
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.projectRepo.FindMember(input.ProjectID, input.UserID); err == nil {
		return nil, ErrAlreadyProjectMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: input.ProjectID,
		UserID:    input.UserID,
		Role:      input.Role,
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// UpdateMemberRole changes a member's role. Demoting the last owner fails
// with ErrLastOwner and leaves the membership unchanged.
func (s *ProjectService) UpdateMemberRole(projectID, userID uint64, role models.ProjectRole) (*models.ProjectMember, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	member, err := s.projectRepo.UpdateMemberRole(projectID, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrMemberNotFound
		case errors.Is(err, repository.ErrLastOwner):
			return nil, ErrLastOwner
		default:
			return nil, fmt.Errorf("failed to update member role: %w", err)
		}
	}

	return member, nil
}

// RemoveMember removes a user from a project. Removing the last owner fails
// with ErrLastOwner and leaves the membership unchanged.
func (s *ProjectService) RemoveMember(projectID, userID uint64) error {
	if err := s.projectRepo.RemoveMember(projectID, userID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrMemberNotFound
		case errors.Is(err, repository.ErrLastOwner):
			return ErrLastOwner
		default:
			return fmt.Errorf("failed to remove member: %w", err)
		}
	}

	return nil
}
