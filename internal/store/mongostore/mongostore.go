// Package mongostore implements the record store contract on MongoDB.
// Identifiers are 24-hex ObjectID strings at the contract boundary and real
// ObjectIDs inside the collections.
package mongostore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskboard/internal/models"
	"taskboard/internal/store"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to MongoDB and verifies the connection with a ping.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	s := &Store{client: client, db: client.Database(database)}
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Transact executes fn sequentially. Multi-document transactions need a
// replica set, which a standalone deployment does not have; the service
// layer orders writes so the primary mutation lands before its side effects.
func (s *Store) Transact(ctx context.Context, fn func(store.Store) error) error {
	return fn(s)
}

func (s *Store) users() *mongo.Collection         { return s.db.Collection("users") }
func (s *Store) projects() *mongo.Collection      { return s.db.Collection("projects") }
func (s *Store) tasks() *mongo.Collection         { return s.db.Collection("tasks") }
func (s *Store) comments() *mongo.Collection      { return s.db.Collection("comments") }
func (s *Store) history() *mongo.Collection       { return s.db.Collection("history") }
func (s *Store) notifications() *mongo.Collection { return s.db.Collection("notifications") }

// oid parses an identifier; a malformed one maps to ErrNotFound.
func oid(id string) (primitive.ObjectID, error) {
	parsed, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.ErrNotFound
	}
	return parsed, nil
}

// oidRef parses an optional reference; empty means unset.
func oidRef(id string) *primitive.ObjectID {
	if id == "" {
		return nil
	}
	parsed, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	return &parsed
}

func refString(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}

func translate(err error) error {
	if err == mongo.ErrNoDocuments {
		return store.ErrNotFound
	}
	return err
}

// Collection documents. The contract's string ids and empty-string optional
// references become ObjectIDs and nil pointers here.

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	Password string             `bson:"password"`
}

type projectDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
}

type taskDoc struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty"`
	Title          string              `bson:"title"`
	Description    string              `bson:"description"`
	Status         string              `bson:"status"`
	Priority       string              `bson:"priority"`
	ProjectID      *primitive.ObjectID `bson:"project_id"`
	AssignedTo     *primitive.ObjectID `bson:"assigned_to"`
	DueDate        *time.Time          `bson:"due_date"`
	EstimatedHours float64             `bson:"estimated_hours"`
	ActualHours    float64             `bson:"actual_hours"`
	CreatedBy      primitive.ObjectID  `bson:"created_by"`
	CreatedAt      time.Time           `bson:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at"`
}

type commentDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	TaskID      primitive.ObjectID `bson:"task_id"`
	UserID      primitive.ObjectID `bson:"user_id"`
	CommentText string             `bson:"comment_text"`
	CreatedAt   time.Time          `bson:"created_at"`
}

type historyDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TaskID    primitive.ObjectID `bson:"task_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Action    string             `bson:"action"`
	OldValue  string             `bson:"old_value"`
	NewValue  string             `bson:"new_value"`
	Timestamp time.Time          `bson:"timestamp"`
}

type notificationDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Message   string             `bson:"message"`
	Type      string             `bson:"type"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"created_at"`
}

func taskFromDoc(d taskDoc) models.Task {
	return models.Task{
		ID:             d.ID.Hex(),
		Title:          d.Title,
		Description:    d.Description,
		Status:         d.Status,
		Priority:       d.Priority,
		ProjectID:      refString(d.ProjectID),
		AssignedTo:     refString(d.AssignedTo),
		DueDate:        d.DueDate,
		EstimatedHours: d.EstimatedHours,
		ActualHours:    d.ActualHours,
		CreatedBy:      d.CreatedBy.Hex(),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func taskToDoc(t *models.Task) (taskDoc, error) {
	createdBy, err := oid(t.CreatedBy)
	if err != nil {
		return taskDoc{}, err
	}
	return taskDoc{
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		ProjectID:      oidRef(t.ProjectID),
		AssignedTo:     oidRef(t.AssignedTo),
		DueDate:        t.DueDate,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		CreatedBy:      createdBy,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}, nil
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	res, err := s.users().InsertOne(ctx, userDoc{Username: u.Username, Password: u.Password})
	if err != nil {
		return err
	}
	u.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	parsed, err := oid(id)
	if err != nil {
		return nil, err
	}
	var d userDoc
	if err := s.users().FindOne(ctx, bson.M{"_id": parsed}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &models.User{ID: d.ID.Hex(), Username: d.Username, Password: d.Password}, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var d userDoc
	if err := s.users().FindOne(ctx, bson.M{"username": username}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &models.User{ID: d.ID.Hex(), Username: d.Username, Password: d.Password}, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.users().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, models.User{ID: d.ID.Hex(), Username: d.Username, Password: d.Password})
	}
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.users().CountDocuments(ctx, bson.M{})
}

// ---- projects ----

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	res, err := s.projects().InsertOne(ctx, projectDoc{Name: p.Name, Description: p.Description})
	if err != nil {
		return err
	}
	p.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	parsed, err := oid(id)
	if err != nil {
		return nil, err
	}
	var d projectDoc
	if err := s.projects().FindOne(ctx, bson.M{"_id": parsed}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &models.Project{ID: d.ID.Hex(), Name: d.Name, Description: d.Description}, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	cur, err := s.projects().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	projects := make([]models.Project, 0, len(docs))
	for _, d := range docs {
		projects = append(projects, models.Project{ID: d.ID.Hex(), Name: d.Name, Description: d.Description})
	}
	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *models.Project) error {
	parsed, err := oid(p.ID)
	if err != nil {
		return err
	}
	_, err = s.projects().UpdateOne(ctx, bson.M{"_id": parsed}, bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
	}})
	return err
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	parsed, err := oid(id)
	if err != nil {
		return err
	}
	_, err = s.projects().DeleteOne(ctx, bson.M{"_id": parsed})
	return err
}

func (s *Store) CountProjects(ctx context.Context) (int64, error) {
	return s.projects().CountDocuments(ctx, bson.M{})
}

// ---- tasks ----

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	d, err := taskToDoc(t)
	if err != nil {
		return err
	}
	res, err := s.tasks().InsertOne(ctx, d)
	if err != nil {
		return err
	}
	t.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	parsed, err := oid(id)
	if err != nil {
		return nil, err
	}
	var d taskDoc
	if err := s.tasks().FindOne(ctx, bson.M{"_id": parsed}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	t := taskFromDoc(d)
	return &t, nil
}

func taskFilterQuery(f store.TaskFilter) bson.M {
	q := bson.M{}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		q["$or"] = bson.A{bson.M{"title": re}, bson.M{"description": re}}
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	if f.ProjectID != "" {
		if ref := oidRef(f.ProjectID); ref != nil {
			q["project_id"] = *ref
		}
	}
	if f.AssignedTo != "" {
		if ref := oidRef(f.AssignedTo); ref != nil {
			q["assigned_to"] = *ref
		}
	}
	return q
}

func (s *Store) FindTasks(ctx context.Context, f store.TaskFilter) ([]models.Task, error) {
	cur, err := s.tasks().Find(ctx, taskFilterQuery(f))
	if err != nil {
		return nil, err
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, taskFromDoc(d))
	}
	return tasks, nil
}

func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	parsed, err := oid(t.ID)
	if err != nil {
		return err
	}
	d, err := taskToDoc(t)
	if err != nil {
		return err
	}
	_, err = s.tasks().UpdateOne(ctx, bson.M{"_id": parsed}, bson.M{"$set": bson.M{
		"title":           d.Title,
		"description":     d.Description,
		"status":          d.Status,
		"priority":        d.Priority,
		"project_id":      d.ProjectID,
		"assigned_to":     d.AssignedTo,
		"due_date":        d.DueDate,
		"estimated_hours": d.EstimatedHours,
		"actual_hours":    d.ActualHours,
		"updated_at":      d.UpdatedAt,
	}})
	return err
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	parsed, err := oid(id)
	if err != nil {
		return err
	}
	_, err = s.tasks().DeleteOne(ctx, bson.M{"_id": parsed})
	return err
}

func (s *Store) CountTasks(ctx context.Context, f store.TaskFilter) (int64, error) {
	return s.tasks().CountDocuments(ctx, taskFilterQuery(f))
}

func (s *Store) ClearTaskProject(ctx context.Context, projectID string) error {
	parsed, err := oid(projectID)
	if err != nil {
		return err
	}
	_, err = s.tasks().UpdateMany(ctx,
		bson.M{"project_id": parsed},
		bson.M{"$set": bson.M{"project_id": nil}})
	return err
}

// ---- comments ----

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	taskID, err := oid(c.TaskID)
	if err != nil {
		return err
	}
	userID, err := oid(c.UserID)
	if err != nil {
		return err
	}
	res, err := s.comments().InsertOne(ctx, commentDoc{
		TaskID:      taskID,
		UserID:      userID,
		CommentText: c.CommentText,
		CreatedAt:   c.CreatedAt,
	})
	if err != nil {
		return err
	}
	c.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *Store) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	parsed, err := oid(taskID)
	if err != nil {
		return nil, err
	}
	cur, err := s.comments().Find(ctx, bson.M{"task_id": parsed},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	comments := make([]models.Comment, 0, len(docs))
	for _, d := range docs {
		comments = append(comments, models.Comment{
			ID:          d.ID.Hex(),
			TaskID:      d.TaskID.Hex(),
			UserID:      d.UserID.Hex(),
			CommentText: d.CommentText,
			CreatedAt:   d.CreatedAt,
		})
	}
	return comments, nil
}

func (s *Store) DeleteCommentsByTask(ctx context.Context, taskID string) error {
	parsed, err := oid(taskID)
	if err != nil {
		return err
	}
	_, err = s.comments().DeleteMany(ctx, bson.M{"task_id": parsed})
	return err
}

// ---- history ----

func (s *Store) CreateHistory(ctx context.Context, h *models.HistoryEntry) error {
	taskID, err := oid(h.TaskID)
	if err != nil {
		return err
	}
	userID, err := oid(h.UserID)
	if err != nil {
		return err
	}
	res, err := s.history().InsertOne(ctx, historyDoc{
		TaskID:    taskID,
		UserID:    userID,
		Action:    h.Action,
		OldValue:  h.OldValue,
		NewValue:  h.NewValue,
		Timestamp: h.Timestamp,
	})
	if err != nil {
		return err
	}
	h.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *Store) ListHistory(ctx context.Context, taskID string, limit int) ([]models.HistoryEntry, error) {
	q := bson.M{}
	if taskID != "" {
		parsed, err := oid(taskID)
		if err != nil {
			return nil, err
		}
		q["task_id"] = parsed
	}
	cur, err := s.history().Find(ctx, q, options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	var docs []historyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	entries := make([]models.HistoryEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, models.HistoryEntry{
			ID:        d.ID.Hex(),
			TaskID:    d.TaskID.Hex(),
			UserID:    d.UserID.Hex(),
			Action:    d.Action,
			OldValue:  d.OldValue,
			NewValue:  d.NewValue,
			Timestamp: d.Timestamp,
		})
	}
	return entries, nil
}

// ---- notifications ----

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	userID, err := oid(n.UserID)
	if err != nil {
		return err
	}
	res, err := s.notifications().InsertOne(ctx, notificationDoc{
		UserID:    userID,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return err
	}
	n.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *Store) ListUnreadNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	parsed, err := oid(userID)
	if err != nil {
		return nil, err
	}
	cur, err := s.notifications().Find(ctx,
		bson.M{"user_id": parsed, "read": false},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	notifs := make([]models.Notification, 0, len(docs))
	for _, d := range docs {
		notifs = append(notifs, models.Notification{
			ID:        d.ID.Hex(),
			UserID:    d.UserID.Hex(),
			Message:   d.Message,
			Type:      d.Type,
			Read:      d.Read,
			CreatedAt: d.CreatedAt,
		})
	}
	return notifs, nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	parsed, err := oid(userID)
	if err != nil {
		return err
	}
	_, err = s.notifications().UpdateMany(ctx,
		bson.M{"user_id": parsed},
		bson.M{"$set": bson.M{"read": true}})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
