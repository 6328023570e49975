package models

import (
	"strings"
	"time"
)

type ReminderType string

const (
	ReminderWhatsApp ReminderType = "whatsapp"
	ReminderSMS      ReminderType = "sms"
	ReminderEmail    ReminderType = "email"
)

func (t ReminderType) Valid() bool {
	return t == ReminderWhatsApp || t == ReminderSMS || t == ReminderEmail
}

// DefaultReminderMessage is used when the cabinet has no template configured.
const DefaultReminderMessage = "Bonjour [PatientName], nous vous rappelons votre rendez-vous du [Date] à [Time] au [CabinetName]."

// ReminderOutcome records what a dispatch attempt produced.
type ReminderOutcome struct {
	AppointmentID string       `json:"appointmentId"`
	Channel       ReminderType `json:"channel"`
	To            string       `json:"to"`
	Message       string       `json:"message"`
	ProviderID    string       `json:"providerId,omitempty"`
	SentAt        time.Time    `json:"sentAt"`
}

// RenderReminder replaces the template placeholders.
func RenderReminder(template string, p Patient, a Appointment, cabinetName string) string {
	if template == "" {
		template = DefaultReminderMessage
	}
	r := strings.NewReplacer(
		"[PatientName]", p.FullName(),
		"[Date]", a.Date,
		"[Time]", a.Time,
		"[CabinetName]", cabinetName,
	)
	return r.Replace(template)
}
