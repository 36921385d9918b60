package dto

import (
	"time"

	"github.com/cogniboard/cogniboard-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectMemberDTO represents a member in a project
type ProjectMemberDTO struct {
	UserID    uint64             `json:"user_id"`
	Role      models.ProjectRole `json:"role"`
	CreatedAt time.Time          `json:"created_at"`
	User      *UserDTO           `json:"user,omitempty"`
}

// ProjectDetailDTO represents a project with its membership list and the
// caller's own role.
type ProjectDetailDTO struct {
	ProjectDTO
	Members  []ProjectMemberDTO `json:"members"`
	YourRole models.ProjectRole `json:"your_role"`
}

// ProjectListResponse wraps the project collection under its named key.
type ProjectListResponse struct {
	Projects []ProjectDTO `json:"projects"`
}

// MemberListResponse wraps the member collection under its named key.
type MemberListResponse struct {
	Members []ProjectMemberDTO `json:"members"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectMemberDTO converts a member to DTO
func ToProjectMemberDTO(member models.ProjectMember) ProjectMemberDTO {
	dto := ProjectMemberDTO{
		UserID:    member.UserID,
		Role:      member.Role,
		CreatedAt: member.CreatedAt,
	}

	// Include user if preloaded
	if member.User.ID != 0 {
		user := ToUserDTO(member.User)
		dto.User = &user
	}

	return dto
}

// ToProjectDetailDTO converts a project with members to detailed DTO
func ToProjectDetailDTO(project models.Project, members []models.ProjectMember, yourRole models.ProjectRole) ProjectDetailDTO {
	memberDTOs := make([]ProjectMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToProjectMemberDTO(member)
	}

	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(project),
		Members:    memberDTOs,
		YourRole:   yourRole,
	}
}

// ToProjectListResponse converts projects to the wrapped list response
func ToProjectListResponse(projects []models.Project) ProjectListResponse {
	items := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		items[i] = ToProjectDTO(project)
	}
	return ProjectListResponse{Projects: items}
}

// ToMemberListResponse converts members to the wrapped list response
func ToMemberListResponse(members []models.ProjectMember) MemberListResponse {
	items := make([]ProjectMemberDTO, len(members))
	for i, member := range members {
		items[i] = ToProjectMemberDTO(member)
	}
	return MemberListResponse{Members: items}
}
