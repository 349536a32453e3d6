package models

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusDelayed    Status = "DELAYED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusDelayed:
		return true
	}
	return false
}

type Project struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Priority    Priority  `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	Status      Status    `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Deadline    time.Time `gorm:"not null" json:"deadline"`
	OwnerID     *uint64   `json:"owner_id"`
	Progress    int       `gorm:"not null;default:0" json:"progress"`
	CreatedByID *uint64   `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner      *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedBy  *User  `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Developers []User `gorm:"many2many:project_developers" json:"developers,omitempty"`
	Tasks      []Task `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
