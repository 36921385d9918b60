package middleware

import (
	"strconv"

	"github.com/cogniboard/cogniboard-api/internal/database"
	apierrors "github.com/cogniboard/cogniboard-api/internal/errors"
	"github.com/cogniboard/cogniboard-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireProjectMember checks that the caller is a member of the project.
// Non-members get the same not-found response as a missing project so that
// project existence is never confirmed to outsiders.
func RequireProjectMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectIDStr := c.Param("id")
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.Validation(c, "Invalid project ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var project models.Project
		if err := database.GetDB().First(&project, projectID).Error; err != nil {
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		var member models.ProjectMember
		err = database.GetDB().
			Where("project_id = ? AND user_id = ?", projectID, userID).
			First(&member).Error
		if err != nil {
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		c.Set("project", project)
		c.Set("project_member", member)
		c.Next()
	}
}

// RequireProjectOwner checks that the caller holds the owner role. Must run
// after RequireProjectMember.
func RequireProjectOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberInterface, exists := c.Get("project_member")
		if !exists {
			apierrors.Forbidden(c, "Project access required")
			c.Abort()
			return
		}

		member, ok := memberInterface.(models.ProjectMember)
		if !ok {
			apierrors.InternalError(c, "Invalid project member data")
			c.Abort()
			return
		}

		if member.Role != models.RoleOwner {
			apierrors.Forbidden(c, "Only project owners can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}
