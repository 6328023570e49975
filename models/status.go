package models

import "fmt"

type AppointmentStatus string

const (
	StatusPlanned   AppointmentStatus = "planifie"
	StatusConfirmed AppointmentStatus = "confirme"
	StatusPresent   AppointmentStatus = "present"
	StatusCompleted AppointmentStatus = "termine"
	StatusAbsent    AppointmentStatus = "absent"
	StatusCancelled AppointmentStatus = "annule"
)

// progression orders the forward path of a visit.
var progression = map[AppointmentStatus]int{
	StatusPlanned:   0,
	StatusConfirmed: 1,
	StatusPresent:   2,
	StatusCompleted: 3,
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusConfirmed, StatusPresent, StatusCompleted, StatusAbsent, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAbsent || s == StatusCancelled
}

// CanTransition reports whether an appointment may move from s to next.
// Forward moves along planifie → confirme → present → termine are allowed,
// skipping steps included; annule and absent are reachable from any
// non-terminal status.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == StatusAbsent || next == StatusCancelled {
		return true
	}
	return progression[next] > progression[s]
}

type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
)

func (s InvoiceStatus) Valid() bool {
	return s == InvoicePending || s == InvoicePaid
}

func (s InvoiceStatus) CanTransition(next InvoiceStatus) bool {
	return s == next || (s == InvoicePending && next == InvoicePaid)
}

type AppointmentType string

const (
	TypeConsultation     AppointmentType = "consultation"
	TypeFollowUpCheck    AppointmentType = "controle"
	TypeEmergency        AppointmentType = "urgence"
	TypeFollowUp         AppointmentType = "suivi"
	TypeTeleconsultation AppointmentType = "teleconsultation"
)

var appointmentTypeLabels = map[AppointmentType]string{
	TypeConsultation:     "Consultation",
	TypeFollowUpCheck:    "Contrôle",
	TypeEmergency:        "Urgence",
	TypeFollowUp:         "Suivi",
	TypeTeleconsultation: "Téléconsultation",
}

func (t AppointmentType) Valid() bool {
	_, ok := appointmentTypeLabels[t]
	return ok
}

// Label is the line description used on invoices.
func (t AppointmentType) Label() string {
	if l, ok := appointmentTypeLabels[t]; ok {
		return l
	}
	return "Consultation"
}

type RecordType string

const (
	RecordConsultation RecordType = "consultation"
	RecordPrescription RecordType = "ordonnance"
	RecordLabResult    RecordType = "analyse"
	RecordImaging      RecordType = "imagerie"
	RecordCertificate  RecordType = "certificat"
	RecordNote         RecordType = "note"
)

func (t RecordType) Valid() bool {
	switch t {
	case RecordConsultation, RecordPrescription, RecordLabResult, RecordImaging, RecordCertificate, RecordNote:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCheck    PaymentMethod = "check"
	PaymentOnline   PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCheck, PaymentOnline:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin        Role = "admin"
	RolePractitioner Role = "practitioner"
	RoleSecretary    Role = "secretary"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePractitioner || r == RoleSecretary
}

// ParseAppointmentStatus validates a raw status value.
func ParseAppointmentStatus(raw string) (AppointmentStatus, error) {
	s := AppointmentStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown appointment status %q", raw)
	}
	return s, nil
}
