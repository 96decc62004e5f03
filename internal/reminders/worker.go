package reminders

import (
	"context"
	"errors"
	"time"

	"github.com/physiobook/physiobook-platform/internal/notify"
	"github.com/physiobook/physiobook-platform/pkg/logging"
)

// dispatchStore is the persistence surface dispatcher and worker share.
type dispatchStore interface {
	DueBefore(ctx context.Context, cutoff time.Time, limit int) ([]Reminder, error)
	SetStatus(ctx context.Context, reminderID string, status Status) error
}

// Dispatcher periodically moves due reminders from the database onto the
// queue.
type Dispatcher struct {
	store    dispatchStore
	queue    Queue
	logger   *logging.Logger
	interval time.Duration
	now      func() time.Time
}

func NewDispatcher(store dispatchStore, queue Queue, logger *logging.Logger, interval time.Duration) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Dispatcher{store: store, queue: queue, logger: logger, interval: interval, now: time.Now}
}

// Run polls for due reminders until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if err := d.dispatchDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("reminder dispatch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (d *Dispatcher) dispatchDue(ctx context.Context) error {
	due, err := d.store.DueBefore(ctx, d.now(), 50)
	if err != nil {
		return err
	}
	for _, rem := range due {
		_, body, err := encodeJob(rem.Payload)
		if err != nil {
			d.logger.Error("reminder payload encode failed", "error", err, "reminder_id", rem.ID)
			continue
		}
		if err := d.queue.Send(ctx, body); err != nil {
			d.logger.Error("reminder enqueue failed", "error", err, "reminder_id", rem.ID)
			continue
		}
		if err := d.store.SetStatus(ctx, rem.ID, StatusEnqueued); err != nil {
			d.logger.Error("reminder status update failed", "error", err, "reminder_id", rem.ID)
		}
	}
	return nil
}

// Worker drains the queue and sends reminder emails.
type Worker struct {
	queue  Queue
	sender notify.EmailSender
	store  dispatchStore
	logger *logging.Logger
}

func NewWorker(queue Queue, sender notify.EmailSender, store dispatchStore, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{queue: queue, sender: sender, store: store, logger: logger}
}

// Run receives jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		messages, err := w.queue.Receive(ctx, 10, 5)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			w.logger.Error("reminder receive failed", "error", err)
			continue
		}
		for _, msg := range messages {
			w.handle(ctx, msg)
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg Message) {
	job, err := decodeJob(msg.Body)
	if err != nil {
		w.logger.Error("reminder job decode failed", "error", err, "message_id", msg.ID)
		_ = w.queue.Delete(ctx, msg.ReceiptHandle)
		return
	}

	email := notify.NewAppointmentReminderEmail(notify.AppointmentReminder{
		PatientName:   job.PatientName,
		PatientEmail:  job.PatientEmail,
		TherapistName: job.TherapistName,
		ScheduledDate: job.ScheduledDate,
		ScheduledTime: job.ScheduledTime,
		ConfirmURL:    job.ConfirmURL,
	})

	if err := w.sender.Send(ctx, email); err != nil {
		w.logger.Error("reminder send failed", "error", err, "reminder_id", job.ReminderID)
		w.setStatus(ctx, job.ReminderID, StatusFailed)
		// Drop the message; the dispatcher re-enqueues FAILED rows until
		// the attempt cap is reached.
		if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
			w.logger.Error("reminder delete failed", "error", err, "reminder_id", job.ReminderID)
		}
		return
	}

	w.setStatus(ctx, job.ReminderID, StatusSent)
	if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		w.logger.Error("reminder delete failed", "error", err, "reminder_id", job.ReminderID)
	}
	w.logger.Info("reminder sent", "reminder_id", job.ReminderID, "appointment_id", job.AppointmentID)
}

func (w *Worker) setStatus(ctx context.Context, reminderID string, status Status) {
	if w.store == nil || reminderID == "" {
		return
	}
	if err := w.store.SetStatus(ctx, reminderID, status); err != nil {
		w.logger.Error("reminder status update failed", "error", err, "reminder_id", reminderID)
	}
}
