package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"timetracker/models"
)

func TestTaskLifecycle(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	member := createUser(t, db, "member")
	team := createTeam(t, db, "Team A", manager.ID, member.ID)
	category := createCategory(t, db, team.ID, "Development")

	svc := NewTaskService(db)

	task, err := svc.Create(member.ID, team.ID, TaskInput{
		Title:      "Implement login",
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Status != models.StatusNotStarted {
		t.Errorf("new task status = %v, want not_started", task.Status)
	}
	if got := task.Duration(time.Now()); got != 0 {
		t.Errorf("new task duration = %d, want 0", got)
	}

	started, err := svc.Start(member.ID, task.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if started.Status != models.StatusInProgress {
		t.Errorf("status after start = %v, want in_progress", started.Status)
	}
	if started.StartTime == nil {
		t.Fatal("start time not set after Start")
	}

	// Second start must fail and leave the first start untouched.
	if _, err := svc.Start(member.ID, task.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Start = %v, want ErrInvalidState", err)
	}
	var check models.Task
	if err := db.First(&check, task.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !check.StartTime.Equal(*started.StartTime) {
		t.Errorf("start time changed by failed second start")
	}

	stopped, err := svc.Stop(member.ID, task.ID)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if stopped.Status != models.StatusCompleted {
		t.Errorf("status after stop = %v, want completed", stopped.Status)
	}
	if stopped.EndTime == nil {
		t.Fatal("end time not set after Stop")
	}
	if !stopped.EndTime.After(*stopped.StartTime) {
		t.Errorf("end time %v not after start time %v", stopped.EndTime, stopped.StartTime)
	}

	if _, err := svc.Stop(member.ID, task.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Stop = %v, want ErrInvalidState", err)
	}
}

func TestStopNeverStarted(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	member := createUser(t, db, "member")
	team := createTeam(t, db, "Team A", manager.ID, member.ID)
	category := createCategory(t, db, team.ID, "Dev")
	task := createTask(t, db, team.ID, member.ID, category.ID, "t", nil, nil)

	svc := NewTaskService(db)
	if _, err := svc.Stop(member.ID, task.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Stop on never-started task = %v, want ErrInvalidState", err)
	}
}

func TestStartStopOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	member := createUser(t, db, "member")
	team := createTeam(t, db, "Team A", manager.ID, member.ID)
	category := createCategory(t, db, team.ID, "Dev")
	task := createTask(t, db, team.ID, member.ID, category.ID, "t", nil, nil)

	svc := NewTaskService(db)

	// Even the team manager may not drive another member's stopwatch.
	if _, err := svc.Start(manager.ID, task.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Start by manager = %v, want ErrForbidden", err)
	}

	if _, err := svc.Start(member.ID, task.ID); err != nil {
		t.Fatalf("Start by owner: %v", err)
	}
	if _, err := svc.Stop(manager.ID, task.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Stop by manager = %v, want ErrForbidden", err)
	}
}

func TestCreatePermissions(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	member := createUser(t, db, "member")
	outsider := createUser(t, db, "outsider")
	team := createTeam(t, db, "Team A", manager.ID, member.ID)
	category := createCategory(t, db, team.ID, "Dev")

	svc := NewTaskService(db)
	input := TaskInput{Title: "t", CategoryID: category.ID}

	if _, err := svc.Create(outsider.ID, team.ID, input); !errors.Is(err, ErrForbidden) {
		t.Errorf("Create by outsider = %v, want ErrForbidden", err)
	}
	if _, err := svc.Create(member.ID, team.ID, input); err != nil {
		t.Errorf("Create by member: %v", err)
	}
	// The manager is not in the members table but counts as one.
	if _, err := svc.Create(manager.ID, team.ID, input); err != nil {
		t.Errorf("Create by manager: %v", err)
	}
}

func TestCreateCategoryTeamMismatch(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	member := createUser(t, db, "member")
	t1 := createTeam(t, db, "Team 1", manager.ID, member.ID)
	t2 := createTeam(t, db, "Team 2", manager.ID, member.ID)
	c1 := createCategory(t, db, t1.ID, "Dev")

	svc := NewTaskService(db)
	_, err := svc.Create(member.ID, t2.ID, TaskInput{Title: "t", CategoryID: c1.ID})
	if !IsValidation(err) {
		t.Fatalf("Create with wrong-team category = %v, want ValidationError", err)
	}
}

func TestCreateStatusFromTimestamps(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	member := createUser(t, db, "member")
	team := createTeam(t, db, "Team A", manager.ID, member.ID)
	category := createCategory(t, db, team.ID, "Dev")

	svc := NewTaskService(db)
	start := time.Now().Add(-time.Hour)
	end := start.Add(30 * time.Minute)

	tests := []struct {
		name  string
		input TaskInput
		want  models.TaskStatus
	}{
		{
			name:  "no timestamps",
			input: TaskInput{Title: "a", CategoryID: category.ID},
			want:  models.StatusNotStarted,
		},
		{
			name:  "start only",
			input: TaskInput{Title: "b", CategoryID: category.ID, StartTime: &start},
			want:  models.StatusInProgress,
		},
		{
			name:  "both",
			input: TaskInput{Title: "c", CategoryID: category.ID, StartTime: &start, EndTime: &end},
			want:  models.StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := svc.Create(member.ID, team.ID, tt.input)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if task.Status != tt.want {
				t.Errorf("status = %v, want %v", task.Status, tt.want)
			}
		})
	}
}

func TestUpdateValidationAndPermissions(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	member := createUser(t, db, "member")
	other := createUser(t, db, "other")
	team := createTeam(t, db, "Team A", manager.ID, member.ID, other.ID)
	category := createCategory(t, db, team.ID, "Dev")

	svc := NewTaskService(db)
	start := time.Now().Add(-time.Hour)
	end := start.Add(10 * time.Minute)
	task := createTask(t, db, team.ID, member.ID, category.ID, "t", &start, &end)

	valid := TaskInput{Title: "t", CategoryID: category.ID, StartTime: &start, EndTime: &end}

	// A teammate who neither owns the task nor manages the team.
	if _, err := svc.Update(other.ID, task.ID, valid); !errors.Is(err, ErrForbidden) {
		t.Errorf("Update by teammate = %v, want ErrForbidden", err)
	}

	// End without start.
	if _, err := svc.Update(member.ID, task.ID, TaskInput{Title: "t", CategoryID: category.ID, EndTime: &end}); !IsValidation(err) {
		t.Errorf("end without start = %v, want ValidationError", err)
	}

	// End before start.
	bad := start.Add(-time.Minute)
	if _, err := svc.Update(member.ID, task.ID, TaskInput{Title: "t", CategoryID: category.ID, StartTime: &start, EndTime: &bad}); !IsValidation(err) {
		t.Errorf("end before start = %v, want ValidationError", err)
	}

	// Manager may edit; clearing both timestamps falls back to
	// not_started.
	updated, err := svc.Update(manager.ID, task.ID, TaskInput{Title: "renamed", CategoryID: category.ID})
	if err != nil {
		t.Fatalf("Update by manager: %v", err)
	}
	if updated.Status != models.StatusNotStarted {
		t.Errorf("status after clearing timestamps = %v, want not_started", updated.Status)
	}
	if updated.StartTime != nil || updated.EndTime != nil {
		t.Error("timestamps not cleared")
	}

	var check models.Task
	if err := db.First(&check, task.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if check.StartTime != nil || check.EndTime != nil {
		t.Error("timestamps not cleared in store")
	}
	if check.Title != "renamed" {
		t.Errorf("title = %q, want renamed", check.Title)
	}
}

func TestDeletePermissions(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	member := createUser(t, db, "member")
	other := createUser(t, db, "other")
	team := createTeam(t, db, "Team A", manager.ID, member.ID, other.ID)
	category := createCategory(t, db, team.ID, "Dev")

	svc := NewTaskService(db)

	t1 := createTask(t, db, team.ID, member.ID, category.ID, "t1", nil, nil)
	t2 := createTask(t, db, team.ID, member.ID, category.ID, "t2", nil, nil)

	if err := svc.Delete(other.ID, t1.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Delete by teammate = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(member.ID, t1.ID); err != nil {
		t.Errorf("Delete by owner: %v", err)
	}
	if err := svc.Delete(manager.ID, t2.ID); err != nil {
		t.Errorf("Delete by manager: %v", err)
	}
	if err := svc.Delete(member.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing task = %v, want ErrNotFound", err)
	}
}

func TestListVisibility(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	memberA := createUser(t, db, "alice")
	memberB := createUser(t, db, "bob")
	nobody := createUser(t, db, "nobody")
	team := createTeam(t, db, "Team A", manager.ID, memberA.ID, memberB.ID)
	category := createCategory(t, db, team.ID, "Dev")

	createTask(t, db, team.ID, memberA.ID, category.ID, "alice 1", nil, nil)
	createTask(t, db, team.ID, memberA.ID, category.ID, "alice 2", nil, nil)
	createTask(t, db, team.ID, memberB.ID, category.ID, "bob 1", nil, nil)

	svc := NewTaskService(db)

	// A member sees only their own tasks, never teammates'.
	page, err := svc.List(memberA.ID, ListParams{})
	if err != nil {
		t.Fatalf("List as member: %v", err)
	}
	if page.TotalCount != 2 {
		t.Errorf("member TotalCount = %d, want 2", page.TotalCount)
	}
	if page.IsManager {
		t.Error("member flagged as manager")
	}
	for _, task := range page.Tasks {
		if task.OwnerID != memberA.ID {
			t.Errorf("member sees task owned by %d", task.OwnerID)
		}
	}

	// The manager sees every task across managed teams.
	page, err = svc.List(manager.ID, ListParams{})
	if err != nil {
		t.Fatalf("List as manager: %v", err)
	}
	if page.TotalCount != 3 {
		t.Errorf("manager TotalCount = %d, want 3", page.TotalCount)
	}
	if !page.IsManager {
		t.Error("manager not flagged as manager")
	}

	// No teams at all: empty result, not an error.
	page, err = svc.List(nobody.ID, ListParams{})
	if err != nil {
		t.Fatalf("List with no teams: %v", err)
	}
	if page.TotalCount != 0 || len(page.Tasks) != 0 {
		t.Errorf("user with no teams sees %d tasks", page.TotalCount)
	}
}

func TestListTeamFilter(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	stranger := createUser(t, db, "stranger")
	t1 := createTeam(t, db, "Team 1", manager.ID)
	t2 := createTeam(t, db, "Team 2", manager.ID)
	other := createTeam(t, db, "Other", stranger.ID)
	c1 := createCategory(t, db, t1.ID, "Dev")
	c2 := createCategory(t, db, t2.ID, "Dev")

	createTask(t, db, t1.ID, manager.ID, c1.ID, "a", nil, nil)
	createTask(t, db, t2.ID, manager.ID, c2.ID, "b", nil, nil)
	createTask(t, db, t2.ID, manager.ID, c2.ID, "c", nil, nil)

	svc := NewTaskService(db)

	page, err := svc.List(manager.ID, ListParams{TeamID: t2.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 2 {
		t.Errorf("filtered TotalCount = %d, want 2", page.TotalCount)
	}
	if page.Warning != "" {
		t.Errorf("unexpected warning %q", page.Warning)
	}

	// A team outside the actor's available set is reported and the
	// filter ignored.
	page, err = svc.List(manager.ID, ListParams{TeamID: other.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Warning == "" {
		t.Error("expected warning for foreign team filter")
	}
	if page.TotalCount != 3 {
		t.Errorf("TotalCount with ignored filter = %d, want 3", page.TotalCount)
	}
}

func TestListDateFilters(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	team := createTeam(t, db, "Team A", manager.ID)
	category := createCategory(t, db, team.ID, "Dev")

	day := func(d int, hour int) time.Time {
		return time.Date(2026, 3, d, hour, 30, 0, 0, time.UTC)
	}
	mk := func(title string, d int) {
		start := day(d, 9)
		end := day(d, 10)
		createTask(t, db, team.ID, manager.ID, category.ID, title, &start, &end)
	}
	mk("day1", 1)
	mk("day2", 2)
	mk("day3", 3)
	createTask(t, db, team.ID, manager.ID, category.ID, "unstarted", nil, nil)

	svc := NewTaskService(db)

	lower := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	upper := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	page, err := svc.List(manager.ID, ListParams{StartDate: &lower})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// Inclusive lower bound on the start date; tasks without a start
	// time drop out once a date filter applies.
	if page.TotalCount != 2 {
		t.Errorf("start_date filter TotalCount = %d, want 2", page.TotalCount)
	}

	page, err = svc.List(manager.ID, ListParams{EndDate: &upper})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 2 {
		t.Errorf("end_date filter TotalCount = %d, want 2", page.TotalCount)
	}

	page, err = svc.List(manager.ID, ListParams{StartDate: &lower, EndDate: &upper})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 1 {
		t.Errorf("both filters TotalCount = %d, want 1", page.TotalCount)
	}
}

func TestListPaginationClamps(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	team := createTeam(t, db, "Team A", manager.ID)
	category := createCategory(t, db, team.ID, "Dev")

	for i := 0; i < 25; i++ {
		createTask(t, db, team.ID, manager.ID, category.ID, fmt.Sprintf("task %02d", i), nil, nil)
	}

	svc := NewTaskService(db)

	tests := []struct {
		name     string
		page     int
		wantPage int
		wantLen  int
	}{
		{name: "default", page: 0, wantPage: 1, wantLen: 10},
		{name: "middle", page: 2, wantPage: 2, wantLen: 10},
		{name: "last", page: 3, wantPage: 3, wantLen: 5},
		{name: "past the end clamps to last", page: 99, wantPage: 3, wantLen: 5},
		{name: "negative clamps to first", page: -4, wantPage: 1, wantLen: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.List(manager.ID, ListParams{Page: tt.page})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if page.TotalPages != 3 {
				t.Errorf("TotalPages = %d, want 3", page.TotalPages)
			}
			if page.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", page.Page, tt.wantPage)
			}
			if len(page.Tasks) != tt.wantLen {
				t.Errorf("len(Tasks) = %d, want %d", len(page.Tasks), tt.wantLen)
			}
		})
	}
}

func TestListTotalDurationCoversWholeFilteredSet(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "manager")
	team := createTeam(t, db, "Team A", manager.ID)
	category := createCategory(t, db, team.ID, "Dev")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		end := start.Add(10 * time.Minute)
		createTask(t, db, team.ID, manager.ID, category.ID, fmt.Sprintf("t%d", i), &start, &end)
	}

	svc := NewTaskService(db)
	page, err := svc.List(manager.ID, ListParams{Page: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Tasks) != 2 {
		t.Fatalf("page 2 len = %d, want 2", len(page.Tasks))
	}
	// 12 completed tasks x 10 minutes, regardless of the page shown.
	if page.TotalDuration != 120 {
		t.Errorf("TotalDuration = %d, want 120", page.TotalDuration)
	}
}
