package repository

import (
	"github.com/cogniboard/cogniboard-api/internal/database"
	"github.com/cogniboard/cogniboard-api/internal/models"
	"github.com/cogniboard/cogniboard-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks matching the filter. Results are ordered by
// created_at ascending with ID as tie-breaker so repeated identical
// queries return identical ordered results.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	if len(filter.ProjectIDs) == 0 {
		return []models.Task{}, nil
	}

	query := r.db.Model(&models.Task{}).Where("tasks.project_id IN ?", filter.ProjectIDs)

	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date <= ?", *filter.DueDateTo)
	}

	query = query.
		Order("tasks.created_at ASC, tasks.id ASC").
		Scopes(database.Paginate(utils.PaginationParams{Skip: filter.Skip, Limit: filter.Limit}))

	var tasks []models.Task
	if err := query.Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// ListForProject retrieves all tasks of one project
func (r *GormTaskRepository) ListForProject(projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Preload("Assignee").
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete deletes a task and its comments in a transaction
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}
