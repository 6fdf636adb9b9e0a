// services/category_service.go - Category management (manager only)
package services

import (
	"errors"

	"timetracker/models"

	"gorm.io/gorm"
)

type CategoryService struct {
	db    *gorm.DB
	teams *TeamService
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db, teams: NewTeamService(db)}
}

// requireManager resolves the actor's role and rejects non-managers.
func (s *CategoryService) requireManager(actorID, teamID uint) error {
	role, err := s.teams.RoleFor(actorID, teamID)
	if err != nil {
		return err
	}
	if role != models.RoleManager {
		return ErrForbidden
	}
	return nil
}

// ListForTeam returns the team's categories ordered by name.
func (s *CategoryService) ListForTeam(actorID, teamID uint) ([]models.Category, error) {
	if err := s.requireManager(actorID, teamID); err != nil {
		return nil, err
	}

	var categories []models.Category
	err := s.db.Where("team_id = ?", teamID).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

// Add creates a category. Names are unique within a team.
func (s *CategoryService) Add(actorID, teamID uint, name, description string) (*models.Category, error) {
	if err := s.requireManager(actorID, teamID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, validationf("category name is required")
	}

	taken, err := s.nameTaken(teamID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	category := &models.Category{
		Name:        name,
		Description: description,
		TeamID:      teamID,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Update renames or redescribes a category in place.
func (s *CategoryService) Update(actorID, teamID, categoryID uint, name, description string) (*models.Category, error) {
	if err := s.requireManager(actorID, teamID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, validationf("category name is required")
	}

	category, err := s.getInTeam(teamID, categoryID)
	if err != nil {
		return nil, err
	}

	taken, err := s.nameTaken(teamID, name, categoryID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	category.Name = name
	category.Description = description
	if err := s.db.Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category permanently. Refused while any task still
// references it.
func (s *CategoryService) Delete(actorID, teamID, categoryID uint) error {
	if err := s.requireManager(actorID, teamID); err != nil {
		return err
	}

	category, err := s.getInTeam(teamID, categoryID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Task{}).
		Where("category_id = ?", category.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrInUse
	}

	return s.db.Delete(category).Error
}

func (s *CategoryService) getInTeam(teamID, categoryID uint) (*models.Category, error) {
	var category models.Category
	err := s.db.Where("id = ? AND team_id = ?", categoryID, teamID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// nameTaken checks (team, name) uniqueness, excluding excludeID when
// editing in place.
func (s *CategoryService) nameTaken(teamID uint, name string, excludeID uint) (bool, error) {
	query := s.db.Model(&models.Category{}).
		Where("team_id = ? AND name = ?", teamID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
