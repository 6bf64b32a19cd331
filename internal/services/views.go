package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/store"
	"taskboard/internal/validate"
)

// Stats are the dashboard counters computed over the full task set.
type Stats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Pending      int `json:"pending"`
	HighPriority int `json:"high_priority"`
	Overdue      int `json:"overdue"`
}

// TaskRow is a task as listed on the dashboard, with referenced names
// resolved.
type TaskRow struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Status           string `json:"status"`
	Priority         string `json:"priority"`
	ProjectName      string `json:"project_name"`
	AssigneeUsername string `json:"assignee_username"`
	DueDate          string `json:"due_date"`
}

// Dashboard is the full view model behind /dashboard.
type Dashboard struct {
	Tab      string           `json:"tab"`
	Projects []models.Project `json:"projects"`
	Users    []models.User    `json:"users"`
	Tasks    []TaskRow        `json:"tasks"`
	Stats    Stats            `json:"stats"`
}

// TaskDetail is the /api/task/{id} payload.
type TaskDetail struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	ProjectID      string  `json:"project_id"`
	AssignedTo     string  `json:"assigned_to"`
	DueDate        string  `json:"due_date"`
	EstimatedHours float64 `json:"estimated_hours"`
}

// SearchRow is one /api/search result.
type SearchRow struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Project  string `json:"project"`
}

// HistoryView is one /api/history entry with the acting username resolved.
type HistoryView struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	Timestamp time.Time `json:"timestamp"`
}

// historyLimit caps /api/history responses.
const historyLimit = 100

type ViewService interface {
	Dashboard(ctx context.Context, tab string) (*Dashboard, error)
	Stats(ctx context.Context) (Stats, error)
	TaskDetail(ctx context.Context, id string) (*TaskDetail, error)
	Search(ctx context.Context, query, status, priority, projectID string) ([]SearchRow, error)
	History(ctx context.Context, taskID string) ([]HistoryView, error)
	Report(ctx context.Context, kind string) ([]string, error)
	ExportCSV(ctx context.Context) ([]byte, error)
}

type ViewServiceImpl struct {
	store store.Store
	// now is swappable so overdue computation is testable.
	now func() time.Time
}

func NewViewService(st store.Store) *ViewServiceImpl {
	return &ViewServiceImpl{store: st, now: time.Now}
}

func (s *ViewServiceImpl) Dashboard(ctx context.Context, tab string) (*Dashboard, error) {
	if tab == "" {
		tab = "tasks"
	}
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.FindTasks(ctx, store.TaskFilter{})
	if err != nil {
		return nil, err
	}

	projectNames := make(map[string]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}
	usernames := make(map[string]string, len(users))
	for _, u := range users {
		usernames[u.ID] = u.Username
	}

	rows := make([]TaskRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, TaskRow{
			ID:               t.ID,
			Title:            t.Title,
			Status:           t.Status,
			Priority:         t.Priority,
			ProjectName:      projectNames[t.ProjectID],
			AssigneeUsername: usernames[t.AssignedTo],
			DueDate:          t.DueDateString(),
		})
	}

	return &Dashboard{
		Tab:      tab,
		Projects: projects,
		Users:    users,
		Tasks:    rows,
		Stats:    s.computeStats(tasks),
	}, nil
}

func (s *ViewServiceImpl) Stats(ctx context.Context) (Stats, error) {
	tasks, err := s.store.FindTasks(ctx, store.TaskFilter{})
	if err != nil {
		return Stats{}, err
	}
	return s.computeStats(tasks), nil
}

func (s *ViewServiceImpl) computeStats(tasks []models.Task) Stats {
	stats := Stats{Total: len(tasks)}
	today := dateOnly(s.now().UTC())
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			stats.Completed++
		}
		if t.Priority == models.PriorityHigh || t.Priority == models.PriorityCritical {
			stats.HighPriority++
		}
		if t.DueDate != nil && t.Status != models.StatusCompleted && dateOnly(*t.DueDate).Before(today) {
			stats.Overdue++
		}
	}
	stats.Pending = stats.Total - stats.Completed
	return stats
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *ViewServiceImpl) TaskDetail(ctx context.Context, id string) (*TaskDetail, error) {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TaskDetail{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		Priority:       task.Priority,
		ProjectID:      task.ProjectID,
		AssignedTo:     task.AssignedTo,
		DueDate:        task.DueDateString(),
		EstimatedHours: task.EstimatedHours,
	}, nil
}

func (s *ViewServiceImpl) Search(ctx context.Context, query, status, priority, projectID string) ([]SearchRow, error) {
	query, err := validate.Length("Search text", query, validate.MaxSearch)
	if err != nil {
		return nil, err
	}
	filter := store.TaskFilter{
		Query:    query,
		Status:   status,
		Priority: priority,
	}
	// A malformed project id is ignored rather than matched, like an unset
	// filter.
	if projectID != "" {
		if _, err := s.store.GetProject(ctx, projectID); err == nil {
			filter.ProjectID = projectID
		}
	}
	tasks, err := s.store.FindTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	projectNames := make(map[string]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}
	rows := make([]SearchRow, 0, len(tasks))
	for _, t := range tasks {
		name := projectNames[t.ProjectID]
		if name == "" {
			name = "No project"
		}
		rows = append(rows, SearchRow{
			ID:       t.ID,
			Title:    t.Title,
			Status:   t.Status,
			Priority: t.Priority,
			Project:  name,
		})
	}
	return rows, nil
}

// History returns up to 100 entries newest first. A malformed task id means
// no task filter at all, matching the original surface.
func (s *ViewServiceImpl) History(ctx context.Context, taskID string) ([]HistoryView, error) {
	entries, err := s.store.ListHistory(ctx, taskID, historyLimit)
	if err != nil {
		if IsNotFound(err) {
			entries, err = s.store.ListHistory(ctx, "", historyLimit)
		}
		if err != nil {
			return nil, err
		}
	}
	usernames, err := usernamesByID(ctx, s.store)
	if err != nil {
		return nil, err
	}
	views := make([]HistoryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, HistoryView{
			ID:        e.ID,
			TaskID:    e.TaskID,
			User:      usernameOr(usernames, e.UserID),
			Action:    e.Action,
			OldValue:  e.OldValue,
			NewValue:  e.NewValue,
			Timestamp: e.Timestamp,
		})
	}
	return views, nil
}

// Report builds the fixed aggregate reports. An unrecognized kind yields an
// empty line set, not an error.
func (s *ViewServiceImpl) Report(ctx context.Context, kind string) ([]string, error) {
	lines := []string{}
	switch kind {
	case "tasks":
		tasks, err := s.store.FindTasks(ctx, store.TaskFilter{})
		if err != nil {
			return nil, err
		}
		counts := map[string]int{}
		order := []string{}
		for _, t := range tasks {
			if _, seen := counts[t.Status]; !seen {
				order = append(order, t.Status)
			}
			counts[t.Status]++
		}
		for _, status := range order {
			lines = append(lines, fmt.Sprintf("%s: %d tasks", status, counts[status]))
		}
	case "projects":
		projects, err := s.store.ListProjects(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range projects {
			n, err := s.store.CountTasks(ctx, store.TaskFilter{ProjectID: p.ID})
			if err != nil {
				return nil, err
			}
			lines = append(lines, fmt.Sprintf("%s: %d tasks", p.Name, n))
		}
	case "users":
		users, err := s.store.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			n, err := s.store.CountTasks(ctx, store.TaskFilter{AssignedTo: u.ID})
			if err != nil {
				return nil, err
			}
			lines = append(lines, fmt.Sprintf("%s: %d tasks assigned", u.Username, n))
		}
	}
	return lines, nil
}

// ExportCSV renders every task as CSV with a UTF-8 BOM so spreadsheet tools
// detect the encoding.
func (s *ViewServiceImpl) ExportCSV(ctx context.Context) ([]byte, error) {
	tasks, err := s.store.FindTasks(ctx, store.TaskFilter{})
	if err != nil {
		return nil, err
	}
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	projectNames := make(map[string]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}
	usernames := make(map[string]string, len(users))
	for _, u := range users {
		usernames[u.ID] = u.Username
	}

	var buf bytes.Buffer
	buf.WriteString("\xEF\xBB\xBF")
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"ID", "Title", "Status", "Priority", "Project", "Assigned", "Due"}); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		project := projectNames[t.ProjectID]
		if project == "" {
			project = "No project"
		}
		assignee := usernames[t.AssignedTo]
		if assignee == "" {
			assignee = "Unassigned"
		}
		record := []string{t.ID, t.Title, t.Status, t.Priority, project, assignee, t.DueDateString()}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
