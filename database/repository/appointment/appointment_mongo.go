package appointmentRepo

import (
	"context"
	"time"

	"voltserve/database"
	"voltserve/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
type MongoAppointmentRepo struct {
	coll     *mongo.Collection
	techColl *mongo.Collection
}

// NewMongoAppointmentRepo creates a new AppointmentRepository using MongoDB.
func NewMongoAppointmentRepo() AppointmentRepository {
	db := database.MongoClient.Database("voltserve")
	return &MongoAppointmentRepo{
		coll:     db.Collection("appointments"),
		techColl: db.Collection("technicians"),
	}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// terminalStatuses are excluded from reservation projections.
var terminalStatuses = []models.AppointmentStatus{
	models.StatusCompleted,
	models.StatusCancelled,
	models.StatusNoShow,
	models.StatusInvoiced,
}
