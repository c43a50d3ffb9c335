package models

type Category struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"not null;index"`
	Color  string `gorm:"not null;default:'#3b82f6'"`
	UserID uint   `gorm:"not null;index"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
