package models

import "time"

type Appointment struct {
	ID             string            `json:"id"`
	PatientID      string            `json:"patientId"`
	PractitionerID string            `json:"practitionerId"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	Duration       int               `json:"duration"` // in minutes
	Type           AppointmentType   `json:"type"`
	Status         AppointmentStatus `json:"status"`
	Notes          string            `json:"notes,omitempty"`

	Fee           float64       `json:"fee"`
	Paid          bool          `json:"paid"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`

	ReminderSent bool         `json:"reminderSent"`
	ReminderType ReminderType `json:"reminderType,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

// AppointmentInput defines the fields accepted when booking an appointment
type AppointmentInput struct {
	PatientID      string            `json:"patientId" binding:"required"`
	PractitionerID string            `json:"practitionerId"`
	Date           string            `json:"date" binding:"required"`
	Time           string            `json:"time" binding:"required"`
	Duration       int               `json:"duration" binding:"min=0"`
	Type           AppointmentType   `json:"type"`
	Status         AppointmentStatus `json:"status"`
	Notes          string            `json:"notes"`
	Fee            float64           `json:"fee" binding:"min=0"`
	ReminderType   ReminderType      `json:"reminderType"`
}

// AppointmentUpdate holds the fields to change; nil means unchanged
type AppointmentUpdate struct {
	PractitionerID *string            `json:"practitionerId"`
	Date           *string            `json:"date"`
	Time           *string            `json:"time"`
	Duration       *int               `json:"duration"`
	Type           *AppointmentType   `json:"type"`
	Status         *AppointmentStatus `json:"status"`
	Notes          *string            `json:"notes"`
	Fee            *float64           `json:"fee"`
	Paid           *bool              `json:"paid"`
	PaymentMethod  *PaymentMethod     `json:"paymentMethod"`
	ReminderType   *ReminderType      `json:"reminderType"`
}

func NewAppointment(id string, in AppointmentInput, createdBy string, now time.Time) Appointment {
	a := Appointment{
		ID:             id,
		PatientID:      in.PatientID,
		PractitionerID: in.PractitionerID,
		Date:           in.Date,
		Time:           in.Time,
		Duration:       in.Duration,
		Type:           in.Type,
		Status:         in.Status,
		Notes:          in.Notes,
		Fee:            in.Fee,
		ReminderType:   in.ReminderType,
		CreatedAt:      now,
		CreatedBy:      createdBy,
	}
	if a.Status == "" {
		a.Status = StatusPlanned
	}
	if a.Type == "" {
		a.Type = TypeConsultation
	}
	if a.Duration == 0 {
		a.Duration = 30
	}
	if a.ReminderType == "" {
		a.ReminderType = ReminderWhatsApp
	}
	return a
}

// Clone returns a copy that shares no memory with a.
func (a Appointment) Clone() Appointment {
	if a.PaidAt != nil {
		t := *a.PaidAt
		a.PaidAt = &t
	}
	return a
}

// Apply merges the update without validating the status change; callers
// check CanTransition first.
func (u AppointmentUpdate) Apply(a *Appointment) {
	setString(&a.PractitionerID, u.PractitionerID)
	setString(&a.Date, u.Date)
	setString(&a.Time, u.Time)
	setInt(&a.Duration, u.Duration)
	setString(&a.Notes, u.Notes)
	setFloat(&a.Fee, u.Fee)
	setBool(&a.Paid, u.Paid)
	if u.Type != nil {
		a.Type = *u.Type
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.PaymentMethod != nil {
		a.PaymentMethod = *u.PaymentMethod
	}
	if u.ReminderType != nil {
		a.ReminderType = *u.ReminderType
	}
}
