package models

import (
	"time"
)

type Worker struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	UserID       uint64    `gorm:"uniqueIndex;not null" json:"user_id"`
	DepartmentID *uint64   `json:"department_id"`
	Title        string    `gorm:"type:varchar(100);not null" json:"title"`
	HireDate     time.Time `gorm:"not null" json:"hire_date"`
	Active       bool      `gorm:"not null;default:true" json:"active"`

	// Relations
	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}
