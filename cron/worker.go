package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"voltserve/config"
	appointmentRepo "voltserve/database/repository/appointment"
	"voltserve/models"
	"voltserve/services/notification"
	"voltserve/services/scheduling"
	"voltserve/utils"

	"github.com/hibiken/asynq"
)

const (
	TypeAppointmentReminder = "appointment:reminder"
	TypeNoShowSweep         = "appointment:no_show_sweep"
)

type reminderPayload struct {
	AppointmentID string `json:"appointmentId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

func queueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// ReminderScheduler enqueues one reminder task per booking, fired ahead of
// the appointment start.
type ReminderScheduler struct {
	Client    *asynq.Client
	LeadHours int
}

func NewReminderScheduler() *ReminderScheduler {
	return &ReminderScheduler{
		Client:    asynq.NewClient(queueRedisOpt()),
		LeadHours: config.AppConfig.ReminderLeadHours,
	}
}

// ScheduleAppointmentReminder enqueues the reminder at start minus the lead
// window. Appointments starting inside the window get no reminder.
func (s *ReminderScheduler) ScheduleAppointmentReminder(ctx context.Context, appt *models.Appointment) error {
	startAt, err := utils.CombineDateMinutes(appt.Date, appt.Start, time.UTC)
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}
	fireAt := startAt.Add(-time.Duration(s.LeadHours) * time.Hour)
	if !fireAt.After(time.Now()) {
		return nil
	}

	payload, err := json.Marshal(reminderPayload{
		AppointmentID: appt.ID,
		Date:          appt.Date,
		Time:          utils.FormatClockMinutes(appt.Start),
	})
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	task := asynq.NewTask(TypeAppointmentReminder, payload)
	_, err = s.Client.EnqueueContext(ctx, task, asynq.ProcessAt(fireAt))
	return err
}

// InitSchedulingWorker runs the async worker plus the periodic no-show sweep
// in the background.
func InitSchedulingWorker(workflow *scheduling.WorkflowService, appts appointmentRepo.AppointmentRepository, notifSvc notification.NotificationService) {
	srv := asynq.NewServer(
		queueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAppointmentReminder, handleReminderTask(appts, notifSvc))
	mux.HandleFunc(TypeNoShowSweep, handleNoShowSweep(workflow))

	go runWithRetry("scheduling worker", func() error { return srv.Run(mux) })

	scheduler := asynq.NewScheduler(queueRedisOpt(), nil)
	if _, err := scheduler.Register("@every 10m", asynq.NewTask(TypeNoShowSweep, nil)); err != nil {
		log.Printf("[SchedulingWorker] failed to register no-show sweep: %v", err)
		return
	}
	go runWithRetry("no-show scheduler", scheduler.Run)
}

func runWithRetry(name string, run func() error) {
	const maxAttempts = 5
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err := run()
		if err == nil {
			return
		}
		log.Printf("[SchedulingWorker] attempt %d/%d: %s failed: %v", attempts, maxAttempts, name, err)
		if attempts == maxAttempts {
			log.Fatalf("[SchedulingWorker] %s: max retry attempts reached", name)
		}
		time.Sleep(time.Duration(attempts*2) * time.Second)
	}
}

// handleReminderTask re-reads the appointment before firing; cancelled or
// moved appointments get no stale reminder.
func handleReminderTask(appts appointmentRepo.AppointmentRepository, notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p reminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] invalid payload: %v", err)
			return err
		}

		appt, err := appts.GetByID(p.AppointmentID)
		if err != nil {
			log.Printf("[ReminderHandler] appointment %s not loadable: %v", p.AppointmentID, err)
			return nil
		}
		if appt.Status.IsTerminal() {
			return nil
		}
		if appt.Date != p.Date || utils.FormatClockMinutes(appt.Start) != p.Time {
			// Rescheduled since this task was enqueued; the reschedule path
			// enqueued a fresh reminder for the new slot.
			return nil
		}

		return notifSvc.AppointmentReminder(ctx, appt)
	}
}

func handleNoShowSweep(workflow *scheduling.WorkflowService) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		now := time.Now().UTC()
		nowMinute := now.Hour()*60 + now.Minute()
		swept, err := workflow.SweepNoShows(ctx, now.Format(utils.DateLayout), nowMinute, config.AppConfig.NoShowGraceMin)
		if err != nil {
			return err
		}
		if swept > 0 {
			log.Printf("[NoShowSweep] marked %d appointments as no_show", swept)
		}
		return nil
	}
}
