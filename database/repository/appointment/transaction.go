package appointmentRepo

import (
	"context"
	"fmt"

	"voltserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CommitBooking inserts the appointment and applies the technician workload
// delta inside one mongo session transaction, so a written appointment is
// never left without its workload update.
func (r *MongoAppointmentRepo) CommitBooking(ctx context.Context, appt *models.Appointment, workloadDelta int) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := r.coll.InsertOne(sc, appt); err != nil {
			return fmt.Errorf("insert appointment failed: %w", err)
		}

		if appt.TechnicianID == "" || workloadDelta == 0 {
			return nil
		}

		filter := bson.M{"id": appt.TechnicianID}
		update := mongo.Pipeline{
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "workload_percent", Value: bson.D{
					{Key: "$max", Value: bson.A{0, bson.D{
						{Key: "$min", Value: bson.A{100, bson.D{
							{Key: "$add", Value: bson.A{"$workload_percent", workloadDelta}},
						}}},
					}}},
				}},
			}}},
		}
		res, err := r.techColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("workload update failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("technician %s not found", appt.TechnicianID)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
