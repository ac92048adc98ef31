package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"voltserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoAppointmentRepo) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Appointment, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("appointment query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

// FindOverlapping returns non-terminal appointments intersecting [start,end)
// on the given date. Two ranges overlap iff a.start < end && start < a.end.
func (r *MongoAppointmentRepo) FindOverlapping(centerID, date string, start, end int) ([]models.Appointment, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"center_id": centerID,
		"date":      date,
		"status":    bson.M{"$nin": terminalStatuses},
		"start":     bson.M{"$lt": end},
		"end":       bson.M{"$gt": start},
	}
	return r.find(ctx, filter)
}

func (r *MongoAppointmentRepo) ListByCenterDate(centerID, date string) ([]models.Appointment, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"center_id": centerID, "date": date}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *MongoAppointmentRepo) ListByTechnicianDate(technicianID, date string) ([]models.Appointment, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"technician_id": technicianID, "date": date}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *MongoAppointmentRepo) ListByCustomer(customerID string, limit, offset int64) ([]models.Appointment, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	filter := bson.M{"customer_id": customerID}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "start", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)
	return r.find(ctx, filter, opts)
}

// ListOverdue returns confirmed appointments whose start time passed more than
// graceMin minutes ago on the given date.
func (r *MongoAppointmentRepo) ListOverdue(date string, nowMinute, graceMin int) ([]models.Appointment, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"date":   date,
		"status": models.StatusConfirmed,
		"start":  bson.M{"$lt": nowMinute - graceMin},
	}
	return r.find(ctx, filter)
}
