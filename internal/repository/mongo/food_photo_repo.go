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

const foodPhotoCollectionName = "food_photos"

// mongoFoodPhotoRepository implements repository.FoodPhotoRepository
type mongoFoodPhotoRepository struct {
	collection *mongo.Collection
}

// NewMongoFoodPhotoRepository creates a new photo metadata repository backed by MongoDB.
func NewMongoFoodPhotoRepository(db *mongo.Database) repository.FoodPhotoRepository {
	return &mongoFoodPhotoRepository{
		collection: db.Collection(foodPhotoCollectionName),
	}
}

// Create inserts new photo metadata. One photo per food log entry.
func (r *mongoFoodPhotoRepository) Create(ctx context.Context, photo *domain.FoodPhoto) (primitive.ObjectID, error) {
	if photo.FoodLogID == primitive.NilObjectID ||
		photo.UserID == primitive.NilObjectID ||
		photo.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("photo requires foodLogId, userId and s3ObjectKey")
	}

	photo.ID = primitive.NewObjectID()
	photo.UploadedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, photo)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// GetByID retrieves photo metadata by its ID.
func (r *mongoFoodPhotoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FoodPhoto, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByFoodLogID retrieves the photo attached to a food log entry.
func (r *mongoFoodPhotoRepository) GetByFoodLogID(ctx context.Context, foodLogID primitive.ObjectID) (*domain.FoodPhoto, error) {
	return r.findOne(ctx, bson.M{"foodLogId": foodLogID})
}

func (r *mongoFoodPhotoRepository) findOne(ctx context.Context, filter bson.M) (*domain.FoodPhoto, error) {
	var photo domain.FoodPhoto
	err := r.collection.FindOne(ctx, filter).Decode(&photo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &photo, nil
}

// Delete removes photo metadata. The stored object is removed by the caller.
func (r *mongoFoodPhotoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureFoodPhotoIndexes creates indexes for the food_photos collection.
func EnsureFoodPhotoIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "foodLogId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
