package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FoodPhoto stores metadata about a meal photo attached to a food log entry.
// The image itself lives in the object store.
type FoodPhoto struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FoodLogID   primitive.ObjectID `bson:"foodLogId" json:"foodLogId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"` // internal
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"` // image/*
	Size        int64              `bson:"size" json:"size"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
