// models/team_member.go
package models

import "time"

// Role is computed per request, never stored: the team's manager_id
// column names the manager, membership rows name the members.
type Role string

const (
	RoleManager Role = "manager"
	RoleMember  Role = "member"
	RoleNone    Role = "none"
)

type TeamMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	TeamID   uint      `json:"team_id" gorm:"not null;uniqueIndex:idx_team_member"`
	Team     *Team     `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_team_member"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	JoinedAt time.Time `json:"joined_at" gorm:"not null"`
}

func (TeamMember) TableName() string {
	return "team_members"
}
