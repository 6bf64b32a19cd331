// Package gormstore implements the record store contract on a relational
// database through gorm. Postgres backs production; the sqlite driver backs
// development and tests.
package gormstore

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/internal/models"
	"taskboard/internal/store"
)

type Store struct {
	db *gorm.DB
}

// OpenPostgres connects to Postgres, applies pool settings and migrates the
// schema.
func OpenPostgres(dsn string, maxOpen, maxIdle int) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	return newMigrated(db)
}

// OpenSQLite opens (or creates) a sqlite database file and migrates the
// schema. Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return newMigrated(db)
}

func newMigrated(db *gorm.DB) (*Store, error) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Comment{},
		&models.HistoryEntry{},
		&models.Notification{},
	)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Transact(ctx context.Context, fn func(store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// newID mints a UUID string primary key.
func newID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// validID reports whether id can exist in this backend at all.
func validID(id string) bool {
	_, err := uuid.FromString(id)
	return err == nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("username asc").Find(&users).Error
	return users, err
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// ---- projects ----

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = newID()
	}
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	var p models.Project
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).Order("name asc").Find(&projects).Error
	return projects, err
}

func (s *Store) UpdateProject(ctx context.Context, p *models.Project) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if !validID(id) {
		return store.ErrNotFound
	}
	return s.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id).Error
}

func (s *Store) CountProjects(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Project{}).Count(&n).Error
	return n, err
}

// ---- tasks ----

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = newID()
	}
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	var t models.Task
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// escapeLike neutralizes LIKE metacharacters so the query matches literally,
// like the document adapter's quoted regex.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func applyTaskFilter(db *gorm.DB, f store.TaskFilter) *gorm.DB {
	if f.Query != "" {
		needle := "%" + escapeLike(strings.ToLower(f.Query)) + "%"
		db = db.Where(`lower(title) LIKE ? ESCAPE '\' OR lower(description) LIKE ? ESCAPE '\'`, needle, needle)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		db = db.Where("priority = ?", f.Priority)
	}
	if f.ProjectID != "" {
		db = db.Where("project_id = ?", f.ProjectID)
	}
	if f.AssignedTo != "" {
		db = db.Where("assigned_to = ?", f.AssignedTo)
	}
	return db
}

func (s *Store) FindTasks(ctx context.Context, f store.TaskFilter) ([]models.Task, error) {
	var tasks []models.Task
	err := applyTaskFilter(s.db.WithContext(ctx), f).Find(&tasks).Error
	return tasks, err
}

func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	// Save writes all fields, including ones cleared to their zero value
	// (unset project, unset assignee, removed due date).
	return s.db.WithContext(ctx).Save(t).Error
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if !validID(id) {
		return store.ErrNotFound
	}
	return s.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id).Error
}

func (s *Store) CountTasks(ctx context.Context, f store.TaskFilter) (int64, error) {
	var n int64
	err := applyTaskFilter(s.db.WithContext(ctx).Model(&models.Task{}), f).Count(&n).Error
	return n, err
}

func (s *Store) ClearTaskProject(ctx context.Context, projectID string) error {
	return s.db.WithContext(ctx).Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Update("project_id", "").Error
}

// ---- comments ----

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *Store) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	if !validID(taskID) {
		return nil, store.ErrNotFound
	}
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at asc").
		Find(&comments).Error
	return comments, err
}

func (s *Store) DeleteCommentsByTask(ctx context.Context, taskID string) error {
	return s.db.WithContext(ctx).Delete(&models.Comment{}, "task_id = ?", taskID).Error
}

// ---- history ----

func (s *Store) CreateHistory(ctx context.Context, h *models.HistoryEntry) error {
	if h.ID == "" {
		h.ID = newID()
	}
	return s.db.WithContext(ctx).Create(h).Error
}

func (s *Store) ListHistory(ctx context.Context, taskID string, limit int) ([]models.HistoryEntry, error) {
	db := s.db.WithContext(ctx).Order("timestamp desc").Limit(limit)
	if taskID != "" {
		if !validID(taskID) {
			return nil, store.ErrNotFound
		}
		db = db.Where("task_id = ?", taskID)
	}
	var entries []models.HistoryEntry
	err := db.Find(&entries).Error
	return entries, err
}

// ---- notifications ----

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = newID()
	}
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *Store) ListUnreadNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifs []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND read = ?", userID, false).
		Order("created_at desc").
		Find(&notifs).Error
	return notifs, err
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Update("read", true).Error
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
