package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetsFromActions(t *testing.T) {
	tests := []struct {
		name    string
		actions []string
		want    []time.Duration
	}{
		{
			name:    "low risk standard reminder",
			actions: []string{"Standard reminder 24 hours before"},
			want:    []time.Duration{24 * time.Hour},
		},
		{
			name: "medium risk pair",
			actions: []string{
				"Send reminder 48 hours before",
				"Send reminder 24 hours before",
				"Request confirmation via SMS",
			},
			want: []time.Duration{48 * time.Hour, 24 * time.Hour},
		},
		{
			name: "high risk triple",
			actions: []string{
				"Send reminder 72 hours before",
				"Send reminder 24 hours before",
				"Send reminder 2 hours before",
				"Call patient to confirm attendance",
				"Consider overbooking strategy",
			},
			want: []time.Duration{72 * time.Hour, 24 * time.Hour, 2 * time.Hour},
		},
		{
			name: "very high risk compact form",
			actions: []string{
				"Call patient to confirm attendance",
				"Send multiple reminders (72h, 24h, 2h)",
				"Apply overbooking for this slot",
				"Require deposit or prepayment",
			},
			want: []time.Duration{72 * time.Hour, 24 * time.Hour, 2 * time.Hour},
		},
		{
			name:    "non-reminder actions only",
			actions: []string{"Require deposit or prepayment", "Consider overbooking strategy"},
			want:    nil,
		},
		{
			name: "duplicates collapse",
			actions: []string{
				"Send reminder 24 hours before",
				"Standard reminder 24 hours before",
			},
			want: []time.Duration{24 * time.Hour},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OffsetsFromActions(tt.actions))
		})
	}
}

type stubStore struct {
	appointmentID string
	sendAts       []time.Time
	payload       Job
	err           error
	cancelled     []string
}

func (s *stubStore) CancelForAppointment(ctx context.Context, appointmentID string) error {
	s.cancelled = append(s.cancelled, appointmentID)
	return nil
}

func (s *stubStore) CreateBatch(ctx context.Context, appointmentID string, sendAts []time.Time, payload Job) ([]Reminder, error) {
	s.appointmentID = appointmentID
	s.sendAts = sendAts
	s.payload = payload
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Reminder, len(sendAts))
	for i, at := range sendAts {
		out[i] = Reminder{ID: "r" + string(rune('1'+i)), AppointmentID: appointmentID, SendAt: at, Status: StatusPending, Payload: payload}
	}
	return out, nil
}

func TestSchedulerSkipsPastSendTimes(t *testing.T) {
	now := time.Date(2026, 5, 5, 9, 0, 0, 0, time.UTC)
	appointmentAt := time.Date(2026, 5, 6, 10, 0, 0, 0, time.UTC) // 25h out

	store := &stubStore{}
	scheduler := NewScheduler(store, nil).WithClock(func() time.Time { return now })

	scheduled, err := scheduler.Schedule(context.Background(), appointmentAt, []string{
		"Send reminder 72 hours before", // already past
		"Send reminder 24 hours before",
		"Send reminder 2 hours before",
	}, Job{AppointmentID: "appt-1", PatientEmail: "p@example.com"})

	require.NoError(t, err)
	require.Len(t, scheduled, 2)
	assert.Equal(t, "appt-1", store.appointmentID)
	assert.Equal(t, appointmentAt.Add(-24*time.Hour), store.sendAts[0])
	assert.Equal(t, appointmentAt.Add(-2*time.Hour), store.sendAts[1])
}

func TestSchedulerNothingToSchedule(t *testing.T) {
	now := time.Date(2026, 5, 6, 9, 0, 0, 0, time.UTC)
	appointmentAt := now.Add(30 * time.Minute)

	store := &stubStore{}
	scheduler := NewScheduler(store, nil).WithClock(func() time.Time { return now })

	scheduled, err := scheduler.Schedule(context.Background(), appointmentAt, []string{
		"Standard reminder 24 hours before",
	}, Job{AppointmentID: "appt-1"})

	require.NoError(t, err)
	assert.Empty(t, scheduled)
	assert.Nil(t, store.sendAts)
}
