package repository

import (
	"errors"
	"fmt"

	"github.com/cogniboard/cogniboard-api/internal/models"
	"gorm.io/gorm"
)

// ErrLastOwner is returned when a membership mutation would leave a project
// with zero owners.
var ErrLastOwner = errors.New("project repository: operation would remove the last owner")

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithOwner creates a project and the creator's owner membership atomically.
func (r *GormProjectRepository) CreateWithOwner(project *models.Project, ownerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		member := &models.ProjectMember{
			ProjectID: project.ID,
			UserID:    ownerID,
			Role:      models.RoleOwner,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}

		return nil
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser lists projects the user is a member of, oldest first.
func (r *GormProjectRepository) ListForUser(userID uint64) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID).
		Order("projects.id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", id)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Create(member).Error
}

// UpdateMemberRole changes a member's role inside a transaction that
// validates the post-condition: the project must keep at least one owner.
func (r *GormProjectRepository) UpdateMemberRole(projectID, userID uint64, role models.ProjectRole) (*models.ProjectMember, error) {
	var member models.ProjectMember

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			First(&member).Error; err != nil {
			return err
		}

		if member.Role == models.RoleOwner && role != models.RoleOwner {
			owners, err := r.countOwners(tx, projectID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return ErrLastOwner
			}
		}

		member.Role = role
		return tx.Save(&member).Error
	})
	if err != nil {
		return nil, err
	}

	return &member, nil
}

// RemoveMember removes a member inside a transaction guarded by the
// last-owner invariant.
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var member models.ProjectMember
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			First(&member).Error; err != nil {
			return err
		}

		if member.Role == models.RoleOwner {
			owners, err := r.countOwners(tx, projectID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return ErrLastOwner
			}
		}

		return tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.ProjectMember{}).Error
	})
}

func (r *GormProjectRepository) countOwners(tx *gorm.DB, projectID uint64) (int64, error) {
	var count int64
	err := tx.Model(&models.ProjectMember{}).
		Where("project_id = ? AND role = ?", projectID, models.RoleOwner).
		Count(&count).Error
	return count, err
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a project with users preloaded
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := r.db.
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListProjectIDsForUser lists the IDs of projects the user is a member of
func (r *GormProjectRepository) ListProjectIDsForUser(userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.ProjectMember{}).
		Where("user_id = ?", userID).
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
