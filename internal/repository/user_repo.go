package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

var ErrNotFound = errors.New("document not found")

// Fields maps dotted document paths to the values written at those paths
type Fields map[string]interface{}

// UserRepo handles the users collection: one document per user id
type UserRepo interface {
	Get(ctx context.Context, uid string) (*model.UserDocument, error)
	Set(ctx context.Context, doc *model.UserDocument) error
	// Update writes only the given leaf paths, creating the document if needed
	Update(ctx context.Context, uid string, fields Fields) error
	Unset(ctx context.Context, uid string, paths ...string) error

	ListStudents(ctx context.Context) ([]*model.UserDocument, error)
	CountByLevel(ctx context.Context, cat model.Category) (map[model.Level]int, error)
	CountVeracityFlagged(ctx context.Context, threshold int) (int, error)
	CountTested(ctx context.Context) (int, error)
}

type userRepo struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewUserRepo creates a new users repository with indexes
func NewUserRepo(db *mongo.Database, logger *zap.Logger) UserRepo {
	repo := &userRepo{
		collection: db.Collection("users"),
		logger:     logger,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *userRepo) ensureIndexes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: model.FieldVeracityScore, Value: 1}}},
	}
	for _, cat := range model.Categories {
		models = append(models, mongo.IndexModel{Keys: bson.D{{Key: levelPath(cat), Value: 1}}})
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, models); err != nil {
		r.logger.Warn("failed to create indexes", zap.String("collection", r.collection.Name()), zap.Error(err))
	}
}

func levelPath(cat model.Category) string {
	return fmt.Sprintf("%s.%s.level", model.FieldTestResults, cat)
}

func (r *userRepo) Get(ctx context.Context, uid string) (*model.UserDocument, error) {
	var doc model.UserDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *userRepo) Set(ctx context.Context, doc *model.UserDocument) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *userRepo) Update(ctx context.Context, uid string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	set := bson.M{}
	for path, v := range fields {
		set[path] = v
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": time.Now()},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, update, opts)
	return err
}

func (r *userRepo) Unset(ctx context.Context, uid string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	unset := bson.M{}
	for _, p := range paths {
		unset[p] = ""
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$unset": unset})
	return err
}

func studentFilter() bson.M {
	return bson.M{"role": bson.M{"$in": bson.A{model.RoleStudent, nil, ""}}}
}

func (r *userRepo) ListStudents(ctx context.Context) ([]*model.UserDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: model.FieldLastTestDate, Value: -1}})
	cursor, err := r.collection.Find(ctx, studentFilter(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*model.UserDocument
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) CountByLevel(ctx context.Context, cat model.Category) (map[model.Level]int, error) {
	path := levelPath(cat)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{path: bson.M{"$exists": true}}}},
		{{Key: "$group", Value: bson.M{"_id": "$" + path, "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Level string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[model.Level]int, len(model.Levels))
	for _, l := range model.Levels {
		counts[l] = 0
	}
	for _, row := range rows {
		level, err := model.ParseLevel(row.Level)
		if err != nil {
			r.logger.Warn("skipping stored results with an unknown level",
				zap.String("category", string(cat)), zap.Int("count", row.Count), zap.Error(err))
			continue
		}
		counts[level] = row.Count
	}
	return counts, nil
}

func (r *userRepo) CountVeracityFlagged(ctx context.Context, threshold int) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{model.FieldVeracityScore: bson.M{"$gte": threshold}})
	return int(n), err
}

func (r *userRepo) CountTested(ctx context.Context) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{model.FieldAnswers: bson.M{"$exists": true}})
	return int(n), err
}
