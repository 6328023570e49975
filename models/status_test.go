package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		allowed  bool
	}{
		{StatusPlanned, StatusConfirmed, true},
		{StatusPlanned, StatusPresent, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusPresent, StatusCompleted, true},
		{StatusPlanned, StatusCancelled, true},
		{StatusConfirmed, StatusAbsent, true},
		{StatusPresent, StatusPresent, true},
		{StatusConfirmed, StatusPlanned, false},
		{StatusCompleted, StatusPresent, false},
		{StatusCancelled, StatusPlanned, false},
		{StatusAbsent, StatusCompleted, false},
		{StatusPlanned, AppointmentStatus("reporte"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusAbsent.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPlanned.Terminal())
	assert.False(t, StatusPresent.Terminal())
}

func TestInvoiceStatusIsOneWay(t *testing.T) {
	assert.True(t, InvoicePending.CanTransition(InvoicePaid))
	assert.False(t, InvoicePaid.CanTransition(InvoicePending))
}

func TestParseAppointmentStatus(t *testing.T) {
	s, err := ParseAppointmentStatus("termine")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseAppointmentStatus("done")
	assert.Error(t, err)
}

func TestAppointmentTypeLabel(t *testing.T) {
	assert.Equal(t, "Téléconsultation", TypeTeleconsultation.Label())
	assert.Equal(t, "Consultation", AppointmentType("inconnu").Label())
	assert.False(t, AppointmentType("inconnu").Valid())
}
