package models

import (
	"time"
)

type Task struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Priority    Priority  `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	Status      Status    `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Deadline    time.Time `gorm:"not null" json:"deadline"`
	ProjectID   uint64    `gorm:"not null;index" json:"project_id"`
	AssigneeID  *uint64   `json:"assignee_id"`
	CreatedByID *uint64   `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Project   Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Assignee  *User   `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	CreatedBy *User   `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}
