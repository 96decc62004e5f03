package notify

import (
	"fmt"
	"strings"
	"time"
)

// BookingConfirmation holds the details rendered into the confirmation email.
type BookingConfirmation struct {
	PatientName     string
	PatientEmail    string
	TherapistName   string
	ScheduledDate   time.Time
	ScheduledTime   string
	AppointmentType string
}

// NewBookingConfirmationEmail renders the booking confirmation message.
func NewBookingConfirmationEmail(c BookingConfirmation) EmailMessage {
	greeting := c.PatientName
	if greeting == "" {
		greeting = "there"
	}

	typeLabel := "In-Person"
	if c.AppointmentType == "TELE_PHYSIO" {
		typeLabel = "Tele-Physio (Online)"
	}
	date := c.ScheduledDate.Format("January 2, 2006")

	var html strings.Builder
	html.WriteString("<h1>Your Appointment is Confirmed!</h1>\n")
	fmt.Fprintf(&html, "<p>Hi %s,</p>\n", greeting)
	html.WriteString("<p>Your physiotherapy appointment has been scheduled:</p>\n<ul>\n")
	fmt.Fprintf(&html, "<li><strong>Therapist:</strong> %s</li>\n", c.TherapistName)
	fmt.Fprintf(&html, "<li><strong>Date:</strong> %s</li>\n", date)
	fmt.Fprintf(&html, "<li><strong>Time:</strong> %s</li>\n", c.ScheduledTime)
	fmt.Fprintf(&html, "<li><strong>Type:</strong> %s</li>\n", typeLabel)
	html.WriteString("</ul>\n<p>We'll send you a reminder before your appointment.</p>\n<p>Best regards,<br>The PhysioBook Team</p>")

	body := fmt.Sprintf(
		"Hi %s,\n\nYour physiotherapy appointment has been scheduled:\n\nTherapist: %s\nDate: %s\nTime: %s\nType: %s\n\nWe'll send you a reminder before your appointment.\n\nBest regards,\nThe PhysioBook Team",
		greeting, c.TherapistName, date, c.ScheduledTime, typeLabel,
	)

	return EmailMessage{
		To:      c.PatientEmail,
		ToName:  c.PatientName,
		Subject: "Appointment Confirmed - PhysioBook",
		Body:    body,
		HTML:    html.String(),
	}
}

// AppointmentReminder holds the details rendered into a reminder email.
type AppointmentReminder struct {
	PatientName   string
	PatientEmail  string
	TherapistName string
	ScheduledDate time.Time
	ScheduledTime string
	// ConfirmURL, when set, adds a confirmation link so the visit can be
	// confirmed straight from the email.
	ConfirmURL string
}

// NewAppointmentReminderEmail renders the reminder message.
func NewAppointmentReminderEmail(rem AppointmentReminder) EmailMessage {
	greeting := rem.PatientName
	if greeting == "" {
		greeting = "there"
	}
	date := rem.ScheduledDate.Format("January 2, 2006")

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", greeting)
	fmt.Fprintf(&body, "This is a reminder of your upcoming physiotherapy appointment with %s on %s at %s.\n\n", rem.TherapistName, date, rem.ScheduledTime)
	if rem.ConfirmURL != "" {
		fmt.Fprintf(&body, "Please confirm your appointment: %s\n\n", rem.ConfirmURL)
	}
	body.WriteString("If you can no longer attend, please reschedule so another patient can take the slot.\n\nBest regards,\nThe PhysioBook Team")

	return EmailMessage{
		To:      rem.PatientEmail,
		ToName:  rem.PatientName,
		Subject: "Appointment Reminder - PhysioBook",
		Body:    body.String(),
	}
}
