package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/physiobook/physiobook-platform/internal/noshow"
	"github.com/physiobook/physiobook-platform/internal/notify"
	"github.com/physiobook/physiobook-platform/internal/observability/metrics"
	"github.com/physiobook/physiobook-platform/internal/reminders"
	"github.com/physiobook/physiobook-platform/pkg/logging"
)

// appointmentStore is the persistence surface the booking service needs.
type appointmentStore interface {
	Create(ctx context.Context, a *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	SlotTaken(ctx context.Context, therapistID string, date time.Time, hhmm string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error)
	MarkSlotBooked(ctx context.Context, therapistID string, date time.Time, hhmm string) error
	ReleaseSlot(ctx context.Context, therapistID string, date time.Time, hhmm string) error
	List(ctx context.Context, filter ListFilter) ([]Appointment, error)
}

// riskAssessor scores a candidate appointment. noshow.Predictor implements it.
type riskAssessor interface {
	Assess(ctx context.Context, patientID string, candidate noshow.CandidateAppointment) (noshow.Features, noshow.Prediction, error)
}

// predictionStore persists prediction records. noshow.Repository implements it.
type predictionStore interface {
	Create(ctx context.Context, rec *noshow.PredictionRecord) (*noshow.PredictionRecord, error)
	UpdateOutcome(ctx context.Context, appointmentID string, outcome noshow.Outcome) error
}

// reminderScheduler schedules and cancels reminder jobs. reminders.Scheduler
// implements it.
type reminderScheduler interface {
	Schedule(ctx context.Context, appointmentAt time.Time, actions []string, payload reminders.Job) ([]reminders.Reminder, error)
	Cancel(ctx context.Context, appointmentID string) error
}

// PatientContact is the minimal patient info needed for notifications.
type PatientContact struct {
	Name  string
	Email string
}

// PatientDirectory resolves patient contact details.
type PatientDirectory interface {
	PatientContact(ctx context.Context, patientID string) (PatientContact, error)
}

// TherapistDirectory resolves therapist display names.
type TherapistDirectory interface {
	TherapistName(ctx context.Context, therapistID string) (string, error)
}

// Service runs the booking workflow: conflict check, risk assessment,
// persistence, slot bookkeeping, confirmation email, and reminder scheduling.
type Service struct {
	store       appointmentStore
	assessor    riskAssessor
	predictions predictionStore
	patients    PatientDirectory
	therapists  TherapistDirectory
	sender      notify.EmailSender
	scheduler   reminderScheduler
	metrics     *metrics.PredictionMetrics
	logger      *logging.Logger
	baseURL     string
}

// ServiceConfig wires the booking service dependencies. Sender, scheduler,
// patients, and therapists may be nil; booking then skips the corresponding
// side effects.
type ServiceConfig struct {
	Store       appointmentStore
	Assessor    riskAssessor
	Predictions predictionStore
	Patients    PatientDirectory
	Therapists  TherapistDirectory
	Sender      notify.EmailSender
	Scheduler   reminderScheduler
	Metrics     *metrics.PredictionMetrics
	Logger      *logging.Logger
	// PublicBaseURL is used to build confirmation links in reminder emails.
	PublicBaseURL string
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		store:       cfg.Store,
		assessor:    cfg.Assessor,
		predictions: cfg.Predictions,
		patients:    cfg.Patients,
		therapists:  cfg.Therapists,
		sender:      cfg.Sender,
		scheduler:   cfg.Scheduler,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		baseURL:     cfg.PublicBaseURL,
	}
}

// BookingRequest is the input to Book.
type BookingRequest struct {
	PatientID          string
	TherapistID        string
	ScheduledDate      time.Time
	ScheduledTime      string // HH:MM, 24h
	Duration           int    // minutes, defaults to 30
	Type               Type   // defaults to IN_PERSON
	TriageAssessmentID *string
	ChiefComplaint     string
}

// BookingResult pairs the created appointment with its risk assessment.
type BookingResult struct {
	Appointment *Appointment         `json:"appointment"`
	Prediction  noshow.Prediction    `json:"noShowPrediction"`
	Reminders   []reminders.Reminder `json:"-"`
}

// Book creates an appointment. The slot conflict check and the appointment
// insert are mandatory; email and reminder scheduling are best effort and
// never fail the booking.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if req.PatientID == "" || req.TherapistID == "" || req.ScheduledTime == "" || req.ScheduledDate.IsZero() {
		return nil, errors.New("appointments: patient, therapist, date and time are required")
	}
	if req.Duration <= 0 {
		req.Duration = 30
	}
	if req.Type == "" {
		req.Type = TypeInPerson
	}
	if !ValidType(string(req.Type)) {
		return nil, fmt.Errorf("appointments: unknown appointment type %q", req.Type)
	}

	taken, err := s.store.SlotTaken(ctx, req.TherapistID, req.ScheduledDate, req.ScheduledTime)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	features, prediction, err := s.assessor.Assess(ctx, req.PatientID, noshow.CandidateAppointment{
		Date: req.ScheduledDate,
		Time: req.ScheduledTime,
		Type: noshow.AppointmentType(req.Type),
	})
	if err != nil {
		return nil, err
	}

	appt, err := s.store.Create(ctx, &Appointment{
		PatientID:          req.PatientID,
		TherapistID:        req.TherapistID,
		ScheduledDate:      req.ScheduledDate,
		ScheduledTime:      req.ScheduledTime,
		Duration:           req.Duration,
		Type:               req.Type,
		Status:             StatusPending,
		TriageAssessmentID: req.TriageAssessmentID,
		ChiefComplaint:     req.ChiefComplaint,
		NoShowProbability:  prediction.Probability,
	})
	if err != nil {
		return nil, err
	}

	if s.predictions != nil {
		if _, err := s.predictions.Create(ctx, &noshow.PredictionRecord{
			AppointmentID: appt.ID,
			PatientID:     req.PatientID,
			TherapistID:   req.TherapistID,
			Probability:   prediction.Probability,
			RiskLevel:     prediction.RiskLevel,
			Features:      features,
		}); err != nil {
			return nil, err
		}
	}

	if err := s.store.MarkSlotBooked(ctx, req.TherapistID, req.ScheduledDate, req.ScheduledTime); err != nil {
		return nil, err
	}

	contact := s.lookupContact(ctx, req.PatientID)
	therapistName := s.lookupTherapistName(ctx, req.TherapistID)

	if s.sender != nil && contact.Email != "" {
		email := notify.NewBookingConfirmationEmail(notify.BookingConfirmation{
			PatientName:     contact.Name,
			PatientEmail:    contact.Email,
			TherapistName:   therapistName,
			ScheduledDate:   req.ScheduledDate,
			ScheduledTime:   req.ScheduledTime,
			AppointmentType: string(req.Type),
		})
		if err := s.sender.Send(ctx, email); err != nil {
			s.logger.Error("booking confirmation email failed", "error", err, "appointment_id", appt.ID)
		}
	}

	var scheduled []reminders.Reminder
	if s.scheduler != nil && contact.Email != "" {
		scheduled, err = s.scheduler.Schedule(ctx, appt.StartsAt(), prediction.SuggestedActions, reminders.Job{
			AppointmentID: appt.ID,
			PatientName:   contact.Name,
			PatientEmail:  contact.Email,
			TherapistName: therapistName,
			ScheduledDate: req.ScheduledDate,
			ScheduledTime: req.ScheduledTime,
			ConfirmURL:    s.confirmURL(appt.ID),
		})
		if err != nil {
			s.logger.Error("reminder scheduling failed", "error", err, "appointment_id", appt.ID)
		}
	}

	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"patient_id", req.PatientID,
		"therapist_id", req.TherapistID,
		"risk_level", prediction.RiskLevel,
		"probability", prediction.Probability,
	)

	return &BookingResult{Appointment: appt, Prediction: prediction, Reminders: scheduled}, nil
}

// Confirm marks a pending appointment as confirmed by the patient.
func (s *Service) Confirm(ctx context.Context, id string) (*Appointment, error) {
	return s.store.UpdateStatus(ctx, id, StatusConfirmed)
}

// UpdateStatus transitions the appointment. Terminal transitions record the
// actual outcome against the stored prediction and free the slot when the
// visit will no longer happen.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error) {
	if !ValidStatus(string(status)) {
		return nil, fmt.Errorf("appointments: unknown status %q", status)
	}

	appt, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if !status.Terminal() {
		return appt, nil
	}

	outcome := outcomeForStatus(status)
	if s.predictions != nil {
		if err := s.predictions.UpdateOutcome(ctx, id, outcome); err != nil && !errors.Is(err, noshow.ErrPredictionNotFound) {
			s.logger.Error("outcome recording failed", "error", err, "appointment_id", id)
		}
	}
	s.metrics.ObserveOutcome(string(outcome))

	if status == StatusCancelled || status == StatusRescheduled {
		if err := s.store.ReleaseSlot(ctx, appt.TherapistID, appt.ScheduledDate, appt.ScheduledTime); err != nil {
			s.logger.Error("slot release failed", "error", err, "appointment_id", id)
		}
		if s.scheduler != nil {
			if err := s.scheduler.Cancel(ctx, id); err != nil {
				s.logger.Error("reminder cancellation failed", "error", err, "appointment_id", id)
			}
		}
	}

	return appt, nil
}

// List returns appointments matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	return s.store.List(ctx, filter)
}

func outcomeForStatus(status Status) noshow.Outcome {
	switch status {
	case StatusCompleted:
		return noshow.OutcomeAttended
	case StatusNoShow:
		return noshow.OutcomeNoShow
	case StatusCancelled:
		return noshow.OutcomeCancelled
	case StatusRescheduled:
		return noshow.OutcomeRescheduled
	}
	return ""
}

func (s *Service) lookupContact(ctx context.Context, patientID string) PatientContact {
	if s.patients == nil {
		return PatientContact{}
	}
	contact, err := s.patients.PatientContact(ctx, patientID)
	if err != nil {
		s.logger.Error("patient contact lookup failed", "error", err, "patient_id", patientID)
		return PatientContact{}
	}
	return contact
}

func (s *Service) lookupTherapistName(ctx context.Context, therapistID string) string {
	if s.therapists == nil {
		return ""
	}
	name, err := s.therapists.TherapistName(ctx, therapistID)
	if err != nil {
		s.logger.Error("therapist name lookup failed", "error", err, "therapist_id", therapistID)
		return ""
	}
	return name
}

func (s *Service) confirmURL(appointmentID string) string {
	if s.baseURL == "" {
		return ""
	}
	return s.baseURL + "/api/appointments/" + appointmentID + "/confirm"
}
