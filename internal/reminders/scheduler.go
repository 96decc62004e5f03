package reminders

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/physiobook/physiobook-platform/pkg/logging"
)

var (
	hoursBeforeRe = regexp.MustCompile(`(\d+) hours? before`)
	multiHoursRe  = regexp.MustCompile(`\(([^)]*)\)`)
	hourTokenRe   = regexp.MustCompile(`(\d+)h`)
)

// OffsetsFromActions extracts reminder lead times from the suggested-action
// strings the risk engine emits. Actions that are not reminders (SMS
// confirmation requests, overbooking, deposits) contribute nothing. The
// result is deduplicated, largest offset first.
func OffsetsFromActions(actions []string) []time.Duration {
	seen := make(map[time.Duration]bool)
	var offsets []time.Duration

	add := func(hours int) {
		d := time.Duration(hours) * time.Hour
		if d > 0 && !seen[d] {
			seen[d] = true
			offsets = append(offsets, d)
		}
	}

	for _, action := range actions {
		if m := hoursBeforeRe.FindStringSubmatch(action); m != nil {
			add(atoiSafe(m[1]))
			continue
		}
		// "Send multiple reminders (72h, 24h, 2h)"
		if m := multiHoursRe.FindStringSubmatch(action); m != nil {
			for _, tok := range hourTokenRe.FindAllStringSubmatch(m[1], -1) {
				add(atoiSafe(tok[1]))
			}
		}
	}

	sort.Slice(offsets, func(i, j int) bool { return offsets[i] > offsets[j] })
	return offsets
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// reminderStore is the persistence surface the scheduler needs.
type reminderStore interface {
	CreateBatch(ctx context.Context, appointmentID string, sendAts []time.Time, payload Job) ([]Reminder, error)
	CancelForAppointment(ctx context.Context, appointmentID string) error
}

// Scheduler turns suggested actions into persisted reminder rows.
type Scheduler struct {
	store  reminderStore
	logger *logging.Logger
	now    func() time.Time
}

func NewScheduler(store reminderStore, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Schedule persists one reminder per extracted offset. Send times already in
// the past (e.g. a 72h reminder for an appointment two days out) are skipped.
// appointmentAt is the appointment's local start instant.
func (s *Scheduler) Schedule(ctx context.Context, appointmentAt time.Time, actions []string, payload Job) ([]Reminder, error) {
	now := s.now()
	var sendAts []time.Time
	for _, offset := range OffsetsFromActions(actions) {
		sendAt := appointmentAt.Add(-offset)
		if sendAt.Before(now) {
			continue
		}
		sendAts = append(sendAts, sendAt)
	}
	if len(sendAts) == 0 {
		return nil, nil
	}

	scheduled, err := s.store.CreateBatch(ctx, payload.AppointmentID, sendAts, payload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("reminders scheduled",
		"appointment_id", payload.AppointmentID,
		"count", len(scheduled),
	)
	return scheduled, nil
}

// Cancel drops pending reminders for an appointment.
func (s *Scheduler) Cancel(ctx context.Context, appointmentID string) error {
	return s.store.CancelForAppointment(ctx, appointmentID)
}
