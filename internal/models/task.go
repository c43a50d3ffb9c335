package models

import "time"

type Task struct {
	BaseModel

	Title       string    `gorm:"not null;index"`
	Description string    `gorm:"not null"`
	Date        time.Time `gorm:"not null;index"`
	Completed   bool      `gorm:"not null"`
	UserID      uint      `gorm:"not null;index"`
	CategoryID  *uint     `gorm:"index"` // nil when the task is uncategorized

	// Relationships
	User     *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}
