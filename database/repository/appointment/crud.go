package appointmentRepo

import (
	"errors"
	"fmt"
	"time"

	"voltserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *MongoAppointmentRepo) GetByID(id string) (*models.Appointment, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var appt models.Appointment
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch appointment with id %s: %w", id, err)
	}
	return &appt, nil
}

func (r *MongoAppointmentRepo) GetByNumber(number string) (*models.Appointment, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var appt models.Appointment
	filter := bson.M{"number": number}
	if err := r.coll.FindOne(ctx, filter).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch appointment with number %s: %w", number, err)
	}
	return &appt, nil
}

// UpdateStatus applies an optimistic, append-only status change.
func (r *MongoAppointmentRepo) UpdateStatus(id string, version int, status models.AppointmentStatus, entry models.WorkflowEntry) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "version": version}
	update := bson.M{
		"$set":  bson.M{"status": status},
		"$push": bson.M{"history": entry},
		"$inc":  bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update status for appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

// UpdateSchedule moves the appointment to a new slot.
func (r *MongoAppointmentRepo) UpdateSchedule(id string, version int, date string, start, end int, spillover bool, entry models.WorkflowEntry) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "version": version}
	update := bson.M{
		"$set": bson.M{
			"date":           date,
			"start":          start,
			"end":            end,
			"spillover_flag": spillover,
			"status":         models.StatusRescheduled,
		},
		"$push": bson.M{"history": entry},
		"$inc":  bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reschedule appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

// UpdateTechnician reassigns the appointment.
func (r *MongoAppointmentRepo) UpdateTechnician(id string, version int, technicianID string, entry models.WorkflowEntry) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "version": version}
	update := bson.M{
		"$set":  bson.M{"technician_id": technicianID},
		"$push": bson.M{"history": entry},
		"$inc":  bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reassign appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}
