// services/team_service.go - Team and membership business logic
package services

import (
	"errors"
	"time"

	"timetracker/models"

	"gorm.io/gorm"
)

type TeamService struct {
	db *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

// ================== ROLE RESOLUTION ==================

// RoleFor resolves the actor's role within a team. The manager is a
// superset of member: every membership-requiring check accepts
// RoleManager, whether or not a membership row exists.
func (s *TeamService) RoleFor(userID, teamID uint) (models.Role, error) {
	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RoleNone, ErrNotFound
		}
		return models.RoleNone, err
	}

	if team.ManagerID == userID {
		return models.RoleManager, nil
	}

	var count int64
	if err := s.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error; err != nil {
		return models.RoleNone, err
	}
	if count > 0 {
		return models.RoleMember, nil
	}
	return models.RoleNone, nil
}

// ================== TEAM QUERIES ==================

// ManagedTeams returns the teams the user manages, ordered by name.
func (s *TeamService) ManagedTeams(userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.Where("manager_id = ?", userID).
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}

// MemberTeams returns the teams the user is listed as a member of.
func (s *TeamService) MemberTeams(userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.name ASC").
		Find(&teams).Error
	return teams, err
}

// TeamsFor returns every team the user belongs to or manages,
// without duplicates (the team selector view).
func (s *TeamService) TeamsFor(userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.Distinct("teams.*").
		Joins("LEFT JOIN team_members ON team_members.team_id = teams.id").
		Where("teams.manager_id = ? OR team_members.user_id = ?", userID, userID).
		Order("teams.name ASC").
		Find(&teams).Error
	return teams, err
}

// AvailableTeams is the base set for task listing and filtering:
// managed teams when the user manages any, member teams otherwise.
func (s *TeamService) AvailableTeams(userID uint) ([]models.Team, bool, error) {
	managed, err := s.ManagedTeams(userID)
	if err != nil {
		return nil, false, err
	}
	if len(managed) > 0 {
		return managed, true, nil
	}
	member, err := s.MemberTeams(userID)
	return member, false, err
}

// GetTeam retrieves a team with its members preloaded.
func (s *TeamService) GetTeam(teamID uint) (*models.Team, error) {
	var team models.Team
	err := s.db.Preload("Members").
		Preload("Members.User").
		Preload("Manager").
		First(&team, teamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

// ================== TEAM PROVISIONING ==================

// CreateTeam creates a team with the creator as its manager.
func (s *TeamService) CreateTeam(name string, managerID uint) (*models.Team, error) {
	if name == "" {
		return nil, validationf("team name is required")
	}

	team := &models.Team{
		Name:      name,
		ManagerID: managerID,
	}
	if err := s.db.Create(team).Error; err != nil {
		return nil, err
	}
	return team, nil
}

// AddMember adds a user to the team's member set (manager only).
func (s *TeamService) AddMember(teamID, actorID, userID uint) error {
	role, err := s.RoleFor(actorID, teamID)
	if err != nil {
		return err
	}
	if role != models.RoleManager {
		return ErrForbidden
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var count int64
	if err := s.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return validationf("user is already a member of this team")
	}

	member := &models.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}
	return s.db.Create(member).Error
}

// RemoveMember removes a user from the team's member set (manager only).
func (s *TeamService) RemoveMember(teamID, actorID, userID uint) error {
	role, err := s.RoleFor(actorID, teamID)
	if err != nil {
		return err
	}
	if role != models.RoleManager {
		return ErrForbidden
	}

	res := s.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTeam removes a team together with its memberships, categories
// and tasks (manager only).
func (s *TeamService) DeleteTeam(teamID, actorID uint) error {
	role, err := s.RoleFor(actorID, teamID)
	if err != nil {
		return err
	}
	if role != models.RoleManager {
		return ErrForbidden
	}

	// Cascade by hand inside one transaction so the behavior does not
	// depend on the driver honoring FK constraints.
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Category{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, teamID).Error
	})
}
