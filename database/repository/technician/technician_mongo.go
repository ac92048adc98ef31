package technicianRepo

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

// MongoTechnicianRepo implements TechnicianRepository using MongoDB.
type MongoTechnicianRepo struct {
	coll *mongo.Collection
}

// NewMongoTechnicianRepo creates a new TechnicianRepository using MongoDB.
func NewMongoTechnicianRepo() TechnicianRepository {
	coll := database.MongoClient.Database("voltserve").Collection("technicians")
	return &MongoTechnicianRepo{coll: coll}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoTechnicianRepo) GetByID(id string) (*models.Technician, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var tech models.Technician
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&tech); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch technician with id %s: %w", id, err)
	}
	return &tech, nil
}

func (r *MongoTechnicianRepo) ListByCenter(centerID string) ([]models.Technician, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"center_id": centerID}
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list technicians for center %s: %w", centerID, err)
	}
	defer cursor.Close(ctx)

	var techs []models.Technician
	if err := cursor.All(ctx, &techs); err != nil {
		return nil, fmt.Errorf("failed to decode technicians: %w", err)
	}
	return techs, nil
}

func (r *MongoTechnicianRepo) Create(t *models.Technician) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to create technician: %w", err)
	}
	return nil
}

func (r *MongoTechnicianRepo) Update(t *models.Technician) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": t.ID}
	update := bson.M{"$set": t}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update technician with id %s: %w", t.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustWorkload applies the delta clamped into [0,100] via an update pipeline.
func (r *MongoTechnicianRepo) AdjustWorkload(id string, delta int) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "workload_percent", Value: bson.D{
				{Key: "$max", Value: bson.A{0, bson.D{
					{Key: "$min", Value: bson.A{100, bson.D{
						{Key: "$add", Value: bson.A{"$workload_percent", delta}},
					}}},
				}}},
			}},
		}}},
	}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to adjust workload for technician %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTechnicianRepo) SetStatus(id string, status models.TechnicianStatus) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"status": status}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set status for technician %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
