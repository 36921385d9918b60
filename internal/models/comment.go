package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment carries no UpdatedAt: the API contract does not track edit timestamps.
type Comment struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	TaskID    uint64         `gorm:"not null;index" json:"task_id"`
	AuthorID  *uint64        `gorm:"index" json:"author_id"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Task   Task  `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
}
