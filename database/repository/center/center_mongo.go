package centerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voltserve/database"
	"voltserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCenterRepo implements CenterRepository using MongoDB.
type MongoCenterRepo struct {
	coll *mongo.Collection
}

// NewMongoCenterRepo creates a new CenterRepository using MongoDB.
func NewMongoCenterRepo() CenterRepository {
	coll := database.MongoClient.Database("voltserve").Collection("centers")
	return &MongoCenterRepo{coll: coll}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoCenterRepo) GetByID(id string) (*models.ServiceCenter, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var center models.ServiceCenter
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&center); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch center with id %s: %w", id, err)
	}
	return &center, nil
}

func (r *MongoCenterRepo) List() ([]models.ServiceCenter, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	defer cursor.Close(ctx)

	var centers []models.ServiceCenter
	if err := cursor.All(ctx, &centers); err != nil {
		return nil, fmt.Errorf("failed to decode centers: %w", err)
	}
	return centers, nil
}

func (r *MongoCenterRepo) Create(c *models.ServiceCenter) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to create center: %w", err)
	}
	return nil
}

func (r *MongoCenterRepo) Update(c *models.ServiceCenter) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": c.ID}
	update := bson.M{"$set": c}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update center with id %s: %w", c.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
