package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Queue moves reminder jobs between the scheduler and the worker.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Message is one raw queue entry.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Job is the self-contained payload the worker needs to send one reminder.
type Job struct {
	ReminderID    string    `json:"reminder_id"`
	AppointmentID string    `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	PatientEmail  string    `json:"patient_email"`
	TherapistName string    `json:"therapist_name"`
	ScheduledDate time.Time `json:"scheduled_date"`
	ScheduledTime string    `json:"scheduled_time"`
	ConfirmURL    string    `json:"confirm_url,omitempty"`
}

func encodeJob(job Job) (Job, string, error) {
	if job.ReminderID == "" {
		job.ReminderID = uuid.NewString()
	}
	body, err := json.Marshal(job)
	if err != nil {
		return Job{}, "", fmt.Errorf("reminders: failed to encode job: %w", err)
	}
	return job, string(body), nil
}

func decodeJob(body string) (Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return Job{}, fmt.Errorf("reminders: failed to decode job: %w", err)
	}
	return job, nil
}
