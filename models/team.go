package models

import "gorm.io/gorm"

// Team member roles
const (
	TeamRoleLeader = "leader"
	TeamRoleMember = "member"
)

// Team represents a group of learners working through modules together.
// IsActive gates module assignment and is toggled by admins.
type Team struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	JoinCode    string `gorm:"uniqueIndex;not null" json:"join_code"`

	IsActive   bool `gorm:"default:true" json:"is_active"`
	IsPrivate  bool `gorm:"default:false" json:"is_private"`
	MaxMembers int  `gorm:"default:5" json:"max_members"`

	CreatedBy uint `gorm:"not null;index" json:"created_by"`

	// Relations
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// TeamMember links a user to a team with a role. A team has exactly one
// leader; everyone else is a member.
type TeamMember struct {
	gorm.Model
	TeamID uint `gorm:"not null;uniqueIndex:idx_team_user" json:"team_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_team_user;index" json:"user_id"`

	Role string `gorm:"default:'member'" json:"role"` // leader, member

	// Relations
	Team Team `json:"-"`
	User User `json:"user,omitempty"`
}

func (tm *TeamMember) IsLeader() bool {
	return tm.Role == TeamRoleLeader
}

// MemberCount returns the current member count for a team.
func MemberCount(db *gorm.DB, teamID uint) (int64, error) {
	var count int64
	err := db.Model(&TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}
