package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/repository"
)

const dietPlanCollectionName = "diet_plans"

// mongoDietPlanRepository implements repository.DietPlanRepository
type mongoDietPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoDietPlanRepository creates a new DietPlan repository.
func NewMongoDietPlanRepository(db *mongo.Database) repository.DietPlanRepository {
	return &mongoDietPlanRepository{
		collection: db.Collection(dietPlanCollectionName),
	}
}

// Create inserts a new diet plan.
func (r *mongoDietPlanRepository) Create(ctx context.Context, plan *domain.DietPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan requires userId")
	}
	if plan.Title == "" {
		plan.Title = domain.DefaultDietPlanTitle
	}
	if plan.Days == nil {
		plan.Days = []domain.DayPlan{}
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// GetByID retrieves a single diet plan by its ID.
func (r *mongoDietPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DietPlan, error) {
	var plan domain.DietPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

var newestFirst = bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}}

// GetByUserID lists a user's plans, most recently updated first.
func (r *mongoDietPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.DietPlan, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []domain.DietPlan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// GetLatestByUserID returns the user's active plan.
func (r *mongoDietPlanRepository) GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.DietPlan, error) {
	var plan domain.DietPlan
	opts := options.FindOne().SetSort(newestFirst)
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// Update replaces the content of a plan. The owner never changes.
func (r *mongoDietPlanRepository) Update(ctx context.Context, plan *domain.DietPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}
	if plan.Days == nil {
		plan.Days = []domain.DayPlan{}
	}
	plan.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"title":       plan.Title,
			"description": plan.Description,
			"days":        plan.Days,
			"source":      plan.Source,
			"updatedAt":   plan.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID, "userId": plan.UserID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a plan, ensuring it belongs to userID.
func (r *mongoDietPlanRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureDietPlanIndexes creates indexes for the diet_plans collection.
func EnsureDietPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}},
			Options: options.Index().SetName("user_updated"),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
