package notification

import (
	"context"

	"voltserve/models"

	"go.uber.org/zap"
)

// NotificationService is the boundary to the delivery system (push, email,
// SMS). Delivery itself lives outside this service; the engine only emits.
type NotificationService interface {
	AppointmentBooked(ctx context.Context, appt *models.Appointment) error
	AppointmentStatusChanged(ctx context.Context, appt *models.Appointment, previous models.AppointmentStatus) error
	AppointmentReminder(ctx context.Context, appt *models.Appointment) error
}

// LogNotificationService records outgoing notifications without delivering
// them; the default when no delivery backend is wired.
type LogNotificationService struct {
	Logger *zap.Logger
}

func (s *LogNotificationService) AppointmentBooked(_ context.Context, appt *models.Appointment) error {
	s.Logger.Sugar().Infof("notify: appointment %s booked for %s %s", appt.Number, appt.Date, appt.Status)
	return nil
}

func (s *LogNotificationService) AppointmentStatusChanged(_ context.Context, appt *models.Appointment, previous models.AppointmentStatus) error {
	s.Logger.Sugar().Infof("notify: appointment %s moved %s -> %s", appt.Number, previous, appt.Status)
	return nil
}

func (s *LogNotificationService) AppointmentReminder(_ context.Context, appt *models.Appointment) error {
	s.Logger.Sugar().Infof("notify: reminder for appointment %s at %s", appt.Number, appt.Date)
	return nil
}
