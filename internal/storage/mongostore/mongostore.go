// Package mongostore реализует хранилище пользователей и задач на MongoDB.
//
// В отличие от PostgreSQL, ссылки задача → исполнитель базой не проверяются:
// проверку наличия исполнителя и отсутствия задач у удаляемого пользователя
// выполняет сервисный слой.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/task-tracker/internal/models"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

// Storage хранит коллекции users и tasks одной базы.
type Storage struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

// New подключается к MongoDB, проверяет соединение и создаёт индексы.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.mongo.New"

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db := client.Database(database)
	s := &Storage{
		client: client,
		users:  db.Collection(usersCollection),
		tasks:  db.Collection(tasksCollection),
	}
	if err = s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// EnsureIndexes создаёт уникальный индекс по email и индексы для выборок задач.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	const op = "storage.mongo.EnsureIndexes"

	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close отключается от MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping проверяет соединение с MongoDB.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func byCreation() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}

// CreateUser сохраняет нового пользователя. Занятый email даёт ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.mongo.CreateUser"

	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, models.Errorf(models.ErrConflict, "email %s is already registered", user.Email))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mongo.GetUserByEmail"

	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return &u, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.mongo.GetUserByID"

	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return &u, nil
}

// GetUsersByIDs возвращает найденных пользователей из списка ids одним запросом.
func (s *Storage) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	const op = "storage.mongo.GetUsersByIDs"
	if len(ids) == 0 {
		return nil, nil
	}

	var users []models.User
	if err := s.findAll(ctx, s.users, bson.M{"_id": bson.M{"$in": ids}}, &users); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// ListUsers возвращает всех пользователей в порядке создания.
func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.mongo.ListUsers"

	var users []models.User
	if err := s.findAll(ctx, s.users, bson.M{}, &users); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// DeleteUser удаляет пользователя по идентификатору.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.mongo.DeleteUser"

	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// CountUsersExcludingRole считает пользователей, чья роль отличается от role.
func (s *Storage) CountUsersExcludingRole(ctx context.Context, role models.Role) (int64, error) {
	const op = "storage.mongo.CountUsersExcludingRole"

	count, err := s.users.CountDocuments(ctx, bson.M{"role": bson.M{"$ne": role}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CreateTask сохраняет задачу.
func (s *Storage) CreateTask(ctx context.Context, task models.Task) error {
	const op = "storage.mongo.CreateTask"

	if _, err := s.tasks.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetTask возвращает задачу по идентификатору.
func (s *Storage) GetTask(ctx context.Context, id string) (*models.Task, error) {
	const op = "storage.mongo.GetTask"

	var t models.Task
	if err := s.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return &t, nil
}

// ListTasks возвращает все задачи.
func (s *Storage) ListTasks(ctx context.Context) ([]models.Task, error) {
	const op = "storage.mongo.ListTasks"

	var tasks []models.Task
	if err := s.findAll(ctx, s.tasks, bson.M{}, &tasks); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

// ListTasksByAssignee возвращает задачи, назначенные пользователю.
func (s *Storage) ListTasksByAssignee(ctx context.Context, userID string) ([]models.Task, error) {
	const op = "storage.mongo.ListTasksByAssignee"

	var tasks []models.Task
	if err := s.findAll(ctx, s.tasks, bson.M{"assigned_to": userID}, &tasks); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

// ListTasksByStatus возвращает задачи с любым из перечисленных статусов.
func (s *Storage) ListTasksByStatus(ctx context.Context, statuses ...models.TaskStatus) ([]models.Task, error) {
	const op = "storage.mongo.ListTasksByStatus"

	var tasks []models.Task
	if err := s.findAll(ctx, s.tasks, bson.M{"status": bson.M{"$in": statuses}}, &tasks); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

// CountTasksByStatus считает задачи с любым из перечисленных статусов.
func (s *Storage) CountTasksByStatus(ctx context.Context, statuses ...models.TaskStatus) (int64, error) {
	const op = "storage.mongo.CountTasksByStatus"

	count, err := s.tasks.CountDocuments(ctx, bson.M{"status": bson.M{"$in": statuses}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountTasksByAssignee считает задачи, назначенные пользователю.
func (s *Storage) CountTasksByAssignee(ctx context.Context, userID string) (int64, error) {
	const op = "storage.mongo.CountTasksByAssignee"

	count, err := s.tasks.CountDocuments(ctx, bson.M{"assigned_to": userID})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// UpdateTaskStatus меняет статус задачи и время обновления.
func (s *Storage) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus, updatedAt time.Time) error {
	const op = "storage.mongo.UpdateTaskStatus"

	res, err := s.tasks.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": updatedAt}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

func (s *Storage) findAll(ctx context.Context, coll *mongo.Collection, filter any, out any) error {
	cursor, err := coll.Find(ctx, filter, byCreation())
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}
