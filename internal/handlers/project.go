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

// ProjectHandler coordinates project and membership HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a project with the caller as its sole owner.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateProjectRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Validation(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the projects the caller is a member of.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projects, err := h.projectService.ListProjectsForUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListResponse(projects))
}

// GetProject returns project details with members.
// Access is enforced by RequireProjectMember.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectInterface, _ := c.Get("project")
	project := projectInterface.(models.Project)

	memberInterface, _ := c.Get("project_member")
	member := memberInterface.(models.ProjectMember)

	_, members, err := h.projectService.GetProjectWithMembers(project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(project, members, member.Role))
}

// UpdateProject applies a sparse patch to a project. Owner only.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectInterface, _ := c.Get("project")
	project := projectInterface.(models.Project)

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.Validation(c, "Invalid request body")
		return
	}

	var patch services.ProjectPatch
	if name, ok := rawReq["name"]; ok {
		nameStr, ok := name.(string)
		if !ok {
			apierrors.Validation(c, "name must be a string")
			return
		}
		patch.Name = &nameStr
	}
	if description, ok := rawReq["description"]; ok {
		descStr, ok := description.(string)
		if !ok {
			apierrors.Validation(c, "description must be a string")
			return
		}
		patch.Description = &descStr
	}

	updated, err := h.projectService.UpdateProject(project.ID, patch)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated))
}

// DeleteProject removes a project and everything it owns. Owner only.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectInterface, _ := c.Get("project")
	project := projectInterface.(models.Project)

	if err := h.projectService.DeleteProject(project.ID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// ListMembers returns the project's membership list.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	projectInterface, _ := c.Get("project")
	project := projectInterface.(models.Project)

	members, err := h.projectService.ListMembers(project.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch members")
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberListResponse(members))
}

// AddMember adds a user to the project. Owner only.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	projectInterface, _ := c.Get("project")
	project := projectInterface.(models.Project)

	type AddMemberRequest struct {
		UserID uint64             `json:"user_id" binding:"required"`
		Role   models.ProjectRole `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Validation(c, "Invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleMember
	}

	member, err := h.projectService.AddMember(services.AddMemberInput{
		ProjectID: project.ID,
		UserID:    req.UserID,
		Role:      req.Role,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectMemberDTO(*member))
}

// UpdateMemberRole changes a member's role. Owner only; demoting the last
// owner is rejected.
func (h *ProjectHandler) UpdateMemberRole(c *gin.Context) {
	projectInterface, _ := c.Get("project")
	project := projectInterface.(models.Project)

	targetUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.Validation(c, "Invalid user ID")
		return
	}

	type UpdateRoleRequest struct {
		Role models.ProjectRole `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Validation(c, "Invalid request body")
		return
	}

	member, err := h.projectService.UpdateMemberRole(project.ID, targetUserID, req.Role)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectMemberDTO(*member))
}

// RemoveMember removes a member from the project. Owner only; removing the
// last owner is rejected.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	projectInterface, _ := c.Get("project")
	project := projectInterface.(models.Project)

	targetUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.Validation(c, "Invalid user ID")
		return
	}

	if err := h.projectService.RemoveMember(project.ID, targetUserID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidProjectName),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrLastOwner):
		apierrors.Validation(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyProjectMember):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
