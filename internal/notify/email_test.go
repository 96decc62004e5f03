package notify

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNewSendGridSenderNilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "noreply@physiobook.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSenderDefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "noreply@physiobook.com",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "PhysioBook" {
		t.Errorf("expected default from name 'PhysioBook', got %q", sender.fromName)
	}
}

func TestSendGridSenderSetsReplyTo(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "noreply@physiobook.com",
		ReplyTo:   "frontdesk@physiobook.com",
	}, nil)

	message := sender.buildMessage(EmailMessage{
		To:      "patient@example.com",
		Subject: "Test",
		Body:    "Test body",
	})

	if message.ReplyTo == nil || message.ReplyTo.Address != "frontdesk@physiobook.com" {
		t.Errorf("reply-to not set: %+v", message.ReplyTo)
	}
}

func TestSendGridSenderNoReplyToByDefault(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "noreply@physiobook.com",
	}, nil)

	message := sender.buildMessage(EmailMessage{
		To:      "patient@example.com",
		Subject: "Test",
		Body:    "Test body",
	})

	if message.ReplyTo != nil {
		t.Errorf("expected no reply-to, got %+v", message.ReplyTo)
	}
}

func TestSESSenderBuildInput(t *testing.T) {
	sender := &SESSender{
		fromEmail: "noreply@physiobook.com",
		fromName:  "PhysioBook",
		replyTo:   "frontdesk@physiobook.com",
	}

	input := sender.buildInput(EmailMessage{
		To:      "patient@example.com",
		Subject: "Test",
		Body:    "plain",
		HTML:    "<p>html</p>",
	})

	if got := *input.FromEmailAddress; got != "PhysioBook <noreply@physiobook.com>" {
		t.Errorf("unexpected from address: %q", got)
	}
	if len(input.ReplyToAddresses) != 1 || input.ReplyToAddresses[0] != "frontdesk@physiobook.com" {
		t.Errorf("unexpected reply-to addresses: %v", input.ReplyToAddresses)
	}
	if input.Content.Simple.Body.Text == nil || input.Content.Simple.Body.Html == nil {
		t.Error("expected both text and html bodies")
	}
}

func TestSendGridSenderSendNilClient(t *testing.T) {
	sender := &SendGridSender{}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "patient@example.com",
		Subject: "Test",
		Body:    "Test body",
	})

	if err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestStubEmailSenderSend(t *testing.T) {
	sender := NewStubEmailSender(nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "patient@example.com",
		Subject: "Test Subject",
		Body:    "Test body",
	})

	if err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}

func TestNewBookingConfirmationEmail(t *testing.T) {
	msg := NewBookingConfirmationEmail(BookingConfirmation{
		PatientName:     "Avery",
		PatientEmail:    "avery@example.com",
		TherapistName:   "Dana Reyes",
		ScheduledDate:   time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC),
		ScheduledTime:   "10:00",
		AppointmentType: "TELE_PHYSIO",
	})

	if msg.Subject != "Appointment Confirmed - PhysioBook" {
		t.Errorf("unexpected subject: %q", msg.Subject)
	}
	if msg.To != "avery@example.com" {
		t.Errorf("unexpected recipient: %q", msg.To)
	}
	for _, want := range []string{"Dana Reyes", "May 6, 2026", "10:00", "Tele-Physio (Online)"} {
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("HTML body missing %q", want)
		}
	}
	if !strings.Contains(msg.Body, "Hi Avery,") {
		t.Errorf("plain body missing greeting: %q", msg.Body)
	}
}

func TestNewBookingConfirmationEmailDefaults(t *testing.T) {
	msg := NewBookingConfirmationEmail(BookingConfirmation{
		PatientEmail:    "avery@example.com",
		TherapistName:   "Dana Reyes",
		ScheduledDate:   time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC),
		ScheduledTime:   "10:00",
		AppointmentType: "IN_PERSON",
	})

	if !strings.Contains(msg.Body, "Hi there,") {
		t.Errorf("expected fallback greeting, got: %q", msg.Body)
	}
	if !strings.Contains(msg.HTML, "In-Person") {
		t.Error("expected In-Person type label")
	}
}

func TestNewAppointmentReminderEmail(t *testing.T) {
	msg := NewAppointmentReminderEmail(AppointmentReminder{
		PatientName:   "Avery",
		PatientEmail:  "avery@example.com",
		TherapistName: "Dana Reyes",
		ScheduledDate: time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "10:00",
		ConfirmURL:    "https://physiobook.example/confirm/abc",
	})

	if msg.Subject != "Appointment Reminder - PhysioBook" {
		t.Errorf("unexpected subject: %q", msg.Subject)
	}
	for _, want := range []string{"Dana Reyes", "May 6, 2026", "10:00", "https://physiobook.example/confirm/abc"} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}
