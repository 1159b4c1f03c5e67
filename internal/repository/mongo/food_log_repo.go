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

const foodLogCollectionName = "food_logs"

type mongoFoodLogRepository struct {
	collection *mongo.Collection
}

// NewMongoFoodLogRepository creates a new food log repository backed by MongoDB.
func NewMongoFoodLogRepository(db *mongo.Database) repository.FoodLogRepository {
	return &mongoFoodLogRepository{
		collection: db.Collection(foodLogCollectionName),
	}
}

// Create inserts a new entry. A zero Date means now.
func (r *mongoFoodLogRepository) Create(ctx context.Context, entry *domain.FoodLogEntry) (primitive.ObjectID, error) {
	if entry.UserID == primitive.NilObjectID || entry.FoodName == "" {
		return primitive.NilObjectID, errors.New("food log entry requires userId and foodName")
	}
	entry.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if entry.Date.IsZero() {
		entry.Date = now
	}
	entry.CreatedAt = now
	entry.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// GetByID retrieves an entry by its ID.
func (r *mongoFoodLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FoodLogEntry, error) {
	var entry domain.FoodLogEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func foodLogQuery(f domain.FoodLogFilter) bson.M {
	query := bson.M{"userId": f.UserID}
	if f.From != nil || f.To != nil {
		date := bson.M{}
		if f.From != nil {
			date["$gte"] = f.From.UTC()
		}
		if f.To != nil {
			date["$lte"] = f.To.UTC()
		}
		query["date"] = date
	}
	if f.MealType != "" {
		query["mealType"] = f.MealType
	}
	return query
}

// Find lists the entries matching f, newest date first.
func (r *mongoFoodLogRepository) Find(ctx context.Context, f domain.FoodLogFilter) ([]domain.FoodLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, foodLogQuery(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []domain.FoodLogEntry{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Update overwrites the mutable fields of an entry. Owner and photo are kept.
func (r *mongoFoodLogRepository) Update(ctx context.Context, entry *domain.FoodLogEntry) error {
	if entry.ID == primitive.NilObjectID {
		return errors.New("food log ID is required for update")
	}
	if entry.FoodName == "" {
		return errors.New("food name cannot be empty")
	}
	entry.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"mealType":        entry.MealType,
			"foodName":        entry.FoodName,
			"quantity":        entry.Quantity,
			"unit":            entry.Unit,
			"calories":        entry.Calories,
			"protein":         entry.Protein,
			"carbs":           entry.Carbs,
			"fat":             entry.Fat,
			"nutritionSource": entry.NutritionSource,
			"notes":           entry.Notes,
			"date":            entry.Date,
			"updatedAt":       entry.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": entry.ID, "userId": entry.UserID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetPhoto links or, with a nil photoID, unlinks the entry's photo.
func (r *mongoFoodLogRepository) SetPhoto(ctx context.Context, id primitive.ObjectID, photoID *primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}}
	if photoID != nil {
		update["$set"].(bson.M)["photoId"] = *photoID
	} else {
		update["$unset"] = bson.M{"photoId": ""}
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an entry, ensuring it belongs to userID.
func (r *mongoFoodLogRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureFoodLogIndexes creates indexes for the food_logs collection.
func EnsureFoodLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("user_date"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "mealType", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("user_meal_date"),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
