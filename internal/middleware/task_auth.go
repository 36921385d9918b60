package middleware

import (
	"strconv"

	"github.com/cogniboard/cogniboard-api/internal/database"
	apierrors "github.com/cogniboard/cogniboard-api/internal/errors"
	"github.com/cogniboard/cogniboard-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireTaskAccess checks that the caller is a member of the task's project.
// A missing task is NotFound; an existing task behind a foreign project is
// Forbidden.
func RequireTaskAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskIDStr := c.Param("id")
		taskID, err := strconv.ParseUint(taskIDStr, 10, 64)
		if err != nil {
			apierrors.Validation(c, "Invalid task ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var task models.Task
		if err := database.GetDB().
			Preload("Assignee").
			First(&task, taskID).Error; err != nil {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		var member models.ProjectMember
		err = database.GetDB().
			Where("project_id = ? AND user_id = ?", task.ProjectID, userID).
			First(&member).Error
		if err != nil {
			apierrors.Forbidden(c, "Not a member of this project")
			c.Abort()
			return
		}

		c.Set("task", task)
		c.Next()
	}
}
