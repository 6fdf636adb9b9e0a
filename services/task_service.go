// services/task_service.go - Task lifecycle and listing business logic
package services

import (
	"errors"
	"time"

	"timetracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TasksPerPage is the fixed listing page size.
const TasksPerPage = 10

type TaskService struct {
	db    *gorm.DB
	teams *TeamService
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db, teams: NewTeamService(db)}
}

// TaskInput carries the user-editable task fields for create and
// manual edit.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CategoryID  uint       `json:"category_id"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

// ListParams are the optional listing filters.
type ListParams struct {
	TeamID    uint       // 0 means no team filter
	StartDate *time.Time // inclusive lower bound on start_time's date
	EndDate   *time.Time // inclusive upper bound on start_time's date
	Page      int        // clamped into [1, totalPages]
}

// TaskPage is one page of the filtered task listing plus the summary
// values computed over the whole filtered set.
type TaskPage struct {
	Tasks          []models.Task `json:"tasks"`
	Page           int           `json:"page"`
	TotalPages     int           `json:"total_pages"`
	TotalCount     int64         `json:"total_count"`
	TotalDuration  int           `json:"total_duration"`
	IsManager      bool          `json:"is_manager"`
	AvailableTeams []models.Team `json:"available_teams"`
	Warning        string        `json:"warning,omitempty"`
}

// ================== LISTING ==================

// List computes the task set visible to the actor, applies filters,
// and returns one page. Managers of any team see every task across
// their managed teams; everyone else sees only their own tasks in
// teams they are a member of. A user with no teams gets an empty page.
func (s *TaskService) List(actorID uint, params ListParams) (*TaskPage, error) {
	available, isManager, err := s.teams.AvailableTeams(actorID)
	if err != nil {
		return nil, err
	}

	page := &TaskPage{
		Page:           1,
		TotalPages:     1,
		IsManager:      isManager,
		AvailableTeams: available,
		Tasks:          []models.Task{},
	}
	if len(available) == 0 {
		return page, nil
	}

	teamIDs := make([]uint, len(available))
	for i, t := range available {
		teamIDs[i] = t.ID
	}

	query := s.db.Model(&models.Task{}).Where("team_id IN ?", teamIDs)
	if !isManager {
		query = query.Where("owner_id = ?", actorID)
	}

	// Team filter must name one of the actor's available teams;
	// otherwise it is reported and ignored, not fatal.
	if params.TeamID != 0 {
		if containsTeam(available, params.TeamID) {
			query = query.Where("team_id = ?", params.TeamID)
		} else {
			page.Warning = "Invalid team selected."
		}
	}

	if params.StartDate != nil {
		query = query.Where("start_time >= ?", startOfDay(*params.StartDate))
	}
	if params.EndDate != nil {
		query = query.Where("start_time < ?", startOfDay(*params.EndDate).AddDate(0, 0, 1))
	}

	// Reusable session: Count, the duration scan and the page query
	// each clone the same condition set.
	query = query.Session(&gorm.Session{})

	if err := query.Count(&page.TotalCount).Error; err != nil {
		return nil, err
	}

	// Total duration is computed over the whole filtered set with one
	// now, so the summary cannot drift from the rows.
	var all []models.Task
	if err := query.Select("start_time", "end_time").Find(&all).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range all {
		page.TotalDuration += all[i].Duration(now)
	}

	page.TotalPages = int((page.TotalCount + TasksPerPage - 1) / TasksPerPage)
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}

	// Out-of-range pages clamp rather than error.
	page.Page = params.Page
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Page > page.TotalPages {
		page.Page = page.TotalPages
	}

	err = query.
		Preload("Category").
		Preload("Owner").
		Preload("Team").
		Order("created_at DESC").
		Limit(TasksPerPage).
		Offset((page.Page - 1) * TasksPerPage).
		Find(&page.Tasks).Error
	if err != nil {
		return nil, err
	}

	return page, nil
}

func containsTeam(teams []models.Team, id uint) bool {
	for _, t := range teams {
		if t.ID == id {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ================== LIFECYCLE ==================

// Create creates a task owned by the actor in the given team. The
// actor must be a member or the manager of the team. Status is derived
// from whichever timestamps were supplied.
func (s *TaskService) Create(actorID, teamID uint, input TaskInput) (*models.Task, error) {
	role, err := s.teams.RoleFor(actorID, teamID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleNone {
		return nil, ErrForbidden
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		OwnerID:     actorID,
		TeamID:      teamID,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
	}
	if err := s.validateInput(task, teamID, input); err != nil {
		return nil, err
	}
	task.Status = models.StatusFor(task.StartTime, task.EndTime)

	if err := s.db.Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// Get retrieves a task for display or editing (owner or team manager).
func (s *TaskService) Get(actorID, taskID uint) (*models.Task, error) {
	task, err := s.getWithTeam(taskID)
	if err != nil {
		return nil, err
	}
	if !s.canModify(actorID, task) {
		return nil, ErrForbidden
	}
	if err := s.db.Preload("Category").Preload("Owner").First(task, task.ID).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies a manual edit (owner or team manager). A manual edit
// may set both timestamps at once or clear them, so the status can
// jump straight to completed or fall back to not_started.
func (s *TaskService) Update(actorID, taskID uint, input TaskInput) (*models.Task, error) {
	task, err := s.getWithTeam(taskID)
	if err != nil {
		return nil, err
	}
	if !s.canModify(actorID, task) {
		return nil, ErrForbidden
	}

	task.Title = input.Title
	task.Description = input.Description
	task.CategoryID = input.CategoryID
	task.StartTime = input.StartTime
	task.EndTime = input.EndTime
	if err := s.validateInput(task, task.TeamID, input); err != nil {
		return nil, err
	}
	task.Status = models.StatusFor(task.StartTime, task.EndTime)

	// Save writes every column, so cleared timestamps become NULL.
	// Associations are omitted so the preloaded team is not upserted.
	if err := s.db.Omit(clause.Associations).Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task (owner or team manager).
func (s *TaskService) Delete(actorID, taskID uint) error {
	task, err := s.getWithTeam(taskID)
	if err != nil {
		return err
	}
	if !s.canModify(actorID, task) {
		return ErrForbidden
	}
	return s.db.Delete(&models.Task{}, taskID).Error
}

// Start begins the stopwatch (owner only). The guard is a conditional
// UPDATE keyed on start_time IS NULL so two racing starts cannot both
// succeed.
func (s *TaskService) Start(actorID, taskID uint) (*models.Task, error) {
	task, err := s.getWithTeam(taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != actorID {
		return nil, ErrForbidden
	}

	now := time.Now()
	res := s.db.Model(&models.Task{}).
		Where("id = ? AND start_time IS NULL", taskID).
		Updates(map[string]interface{}{
			"start_time": now,
			"status":     models.StatusInProgress,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	task.StartTime = &now
	task.Status = models.StatusInProgress
	return task, nil
}

// Stop ends the stopwatch (owner only). Conditional on the task being
// started and not yet completed, atomically.
func (s *TaskService) Stop(actorID, taskID uint) (*models.Task, error) {
	task, err := s.getWithTeam(taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != actorID {
		return nil, ErrForbidden
	}

	now := time.Now()
	res := s.db.Model(&models.Task{}).
		Where("id = ? AND start_time IS NOT NULL AND end_time IS NULL", taskID).
		Updates(map[string]interface{}{
			"end_time":   now,
			"status":     models.StatusCompleted,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	if err := s.db.First(task, taskID).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// ================== HELPERS ==================

func (s *TaskService) getWithTeam(taskID uint) (*models.Task, error) {
	var task models.Task
	err := s.db.Preload("Team").First(&task, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) canModify(actorID uint, task *models.Task) bool {
	if task.OwnerID == actorID {
		return true
	}
	return task.Team != nil && task.Team.ManagerID == actorID
}

// validateInput checks title, timestamps and the category-team match.
func (s *TaskService) validateInput(task *models.Task, teamID uint, input TaskInput) error {
	if task.Title == "" {
		return validationf("task title is required")
	}
	if input.CategoryID == 0 {
		return validationf("category is required")
	}

	var category models.Category
	if err := s.db.First(&category, input.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationf("selected category does not exist")
		}
		return err
	}
	if category.TeamID != teamID {
		return validationf("selected category does not belong to this team")
	}

	if err := task.Validate(); err != nil {
		return validationf("%s", err)
	}
	return nil
}
