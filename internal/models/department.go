package models

type Department struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// Relations
	Workers []Worker `gorm:"foreignKey:DepartmentID" json:"workers,omitempty"`
}
