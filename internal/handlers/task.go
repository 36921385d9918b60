package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cogniboard/cogniboard-api/internal/dto"
	apierrors "github.com/cogniboard/cogniboard-api/internal/errors"
	"github.com/cogniboard/cogniboard-api/internal/middleware"
	"github.com/cogniboard/cogniboard-api/internal/models"
	"github.com/cogniboard/cogniboard-api/internal/services"
	"github.com/cogniboard/cogniboard-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListProjectTasks returns all tasks of one project.
// Access is enforced by RequireProjectMember.
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	projectInterface, _ := c.Get("project")
	project := projectInterface.(models.Project)

	tasks, err := h.taskService.ListTasksForProject(project.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, time.Now()))
}

// CreateProjectTask creates a task in the project. Any member may do this.
func (h *TaskHandler) CreateProjectTask(c *gin.Context) {
	projectInterface, _ := c.Get("project")
	project := projectInterface.(models.Project)

	type CreateTaskRequest struct {
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description"`
		AssigneeID  *uint64             `json:"assignee_id"`
		Priority    models.TaskPriority `json:"priority" binding:"required"`
		DueDate     *time.Time          `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Validation(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, time.Now()))
}

// ListTasks returns tasks across the caller's projects, filtered by any
// combination of project, assignee, status, priority and due date range.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	input := services.ListTasksInput{UserID: userID}

	if v := c.Query("project_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.Validation(c, "Invalid project_id")
			return
		}
		input.ProjectID = &id
	}
	if v := c.Query("assignee_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.Validation(c, "Invalid assignee_id")
			return
		}
		input.AssigneeID = &id
	}
	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		input.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := models.TaskPriority(v)
		input.Priority = &priority
	}
	if v := c.Query("due_date_from"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			apierrors.Validation(c, "Invalid due_date_from")
			return
		}
		input.DueDateFrom = &from
	}
	if v := c.Query("due_date_to"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			apierrors.Validation(c, "Invalid due_date_to")
			return
		}
		input.DueDateTo = &to
	}

	params := utils.GetPaginationParams(c)
	input.Skip = params.Skip
	input.Limit = params.Limit

	tasks, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, time.Now()))
}

// GetTask returns a task by ID.
// Access is enforced by RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskInterface, exists := c.Get("task")
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	task, ok := taskInterface.(models.Task)
	if !ok {
		apierrors.InternalError(c, "Invalid task data")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, time.Now()))
}

// UpdateTask applies a sparse patch to a task. Absent fields are untouched;
// assignee_id and due_date may be set to null explicitly.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskInterface, exists := c.Get("task")
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	task, ok := taskInterface.(models.Task)
	if !ok {
		apierrors.InternalError(c, "Invalid task data")
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.Validation(c, "Invalid request body")
		return
	}

	patch, errMsg := buildTaskPatch(rawReq)
	if errMsg != "" {
		apierrors.Validation(c, errMsg)
		return
	}

	updated, err := h.taskService.UpdateTask(task.ID, patch)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated, time.Now()))
}

// DeleteTask removes a task and its comments.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskInterface, exists := c.Get("task")
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	task, ok := taskInterface.(models.Task)
	if !ok {
		apierrors.InternalError(c, "Invalid task data")
		return
	}

	if err := h.taskService.DeleteTask(task.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// buildTaskPatch maps a raw JSON object onto a sparse task patch. The
// returned message is non-empty on a malformed field. overdue is derived
// and silently ignored on input.
func buildTaskPatch(rawReq map[string]any) (services.TaskPatch, string) {
	var patch services.TaskPatch

	if title, ok := rawReq["title"]; ok {
		titleStr, ok := title.(string)
		if !ok {
			return patch, "title must be a string"
		}
		patch.Title = &titleStr
	}
	if description, ok := rawReq["description"]; ok {
		descStr, ok := description.(string)
		if !ok {
			return patch, "description must be a string"
		}
		patch.Description = &descStr
	}
	if priority, ok := rawReq["priority"]; ok {
		priorityStr, ok := priority.(string)
		if !ok {
			return patch, "priority must be a string"
		}
		p := models.TaskPriority(priorityStr)
		patch.Priority = &p
	}
	if status, ok := rawReq["status"]; ok {
		statusStr, ok := status.(string)
		if !ok {
			return patch, "status must be a string"
		}
		s := models.TaskStatus(statusStr)
		patch.Status = &s
	}
	if assignee, ok := rawReq["assignee_id"]; ok {
		patch.AssigneeSet = true
		if assignee != nil {
			assigneeNum, ok := assignee.(float64)
			if !ok || assigneeNum < 0 {
				return patch, "assignee_id must be a user ID or null"
			}
			id := uint64(assigneeNum)
			patch.AssigneeID = &id
		}
	}
	if dueDate, ok := rawReq["due_date"]; ok {
		patch.DueDateSet = true
		if dueDate != nil {
			dueDateStr, ok := dueDate.(string)
			if !ok {
				return patch, "due_date must be an ISO-8601 string or null"
			}
			parsed, err := parseDate(dueDateStr)
			if err != nil {
				return patch, "due_date must be an ISO-8601 string or null"
			}
			patch.DueDate = &parsed
		}
	}

	return patch, ""
}

// parseDate accepts RFC3339 timestamps and plain dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTaskTitle),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrAssigneeNotMember):
		apierrors.Validation(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
