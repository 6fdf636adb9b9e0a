// models/team.go
package models

import "time"

type Team struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"not null;size:100"`
	ManagerID uint         `json:"manager_id" gorm:"not null;index"`
	Manager   *User        `json:"manager,omitempty" gorm:"foreignKey:ManagerID"`
	Members   []TeamMember `json:"members,omitempty" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Team) TableName() string {
	return "teams"
}
