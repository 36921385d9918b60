package dto

import (
	"time"

	"github.com/cogniboard/cogniboard-api/internal/models"
)

// TaskDTO represents a task in API responses. Overdue is derived at
// conversion time and never stored or accepted as input.
type TaskDTO struct {
	ID          uint64              `json:"id"`
	ProjectID   uint64              `json:"project_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	AssigneeID  *uint64             `json:"assignee_id"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	DueDate     *time.Time          `json:"due_date"`
	Overdue     bool                `json:"overdue"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Assignee    *UserDTO            `json:"assignee,omitempty"`
}

// TaskListResponse wraps the task collection under its named key.
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
}

// ToTaskDTO converts a Task model to TaskDTO. The caller supplies now so
// that every task in one response shares the same overdue reference instant.
func ToTaskDTO(task models.Task, now time.Time) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		AssigneeID:  task.AssigneeID,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     task.DueDate,
		Overdue:     task.Overdue(now),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include assignee if preloaded
	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskListResponse converts tasks to the wrapped list response using a
// single reference instant for all overdue flags.
func ToTaskListResponse(tasks []models.Task, now time.Time) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, now)
	}
	return TaskListResponse{Tasks: items}
}
