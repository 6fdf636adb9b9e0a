// models/category.go
package models

import "time"

// Category groups tasks within one team. Names are unique per team.
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:100;uniqueIndex:idx_team_category_name"`
	Description string    `json:"description" gorm:"type:text"`
	TeamID      uint      `json:"team_id" gorm:"not null;uniqueIndex:idx_team_category_name"`
	Team        *Team     `json:"team,omitempty" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}
