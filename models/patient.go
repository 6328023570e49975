package models

import "time"

type Patient struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Gender    string `json:"gender,omitempty"`
	BloodType string `json:"bloodType,omitempty"`
	Allergies string `json:"allergies,omitempty"`
	Address   string `json:"address,omitempty"`
	Notes     string `json:"notes,omitempty"`

	// CreatedAt is the creation date (YYYY-MM-DD) and never changes after add.
	CreatedAt string `json:"createdAt"`

	// Counters carried for display; nothing maintains them yet.
	TotalVisits int     `json:"totalVisits"`
	Balance     float64 `json:"balance"`
}

// PatientInput defines the fields accepted when creating a patient
type PatientInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	BirthDate string `json:"birthDate"`
	Gender    string `json:"gender"`
	BloodType string `json:"bloodType"`
	Allergies string `json:"allergies"`
	Address   string `json:"address"`
	Notes     string `json:"notes"`
}

// PatientUpdate holds the fields to change; nil means unchanged
type PatientUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	BirthDate *string `json:"birthDate"`
	Gender    *string `json:"gender"`
	BloodType *string `json:"bloodType"`
	Allergies *string `json:"allergies"`
	Address   *string `json:"address"`
	Notes     *string `json:"notes"`
}

func NewPatient(id string, in PatientInput, now time.Time) Patient {
	return Patient{
		ID:        id,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Email:     in.Email,
		BirthDate: in.BirthDate,
		Gender:    in.Gender,
		BloodType: in.BloodType,
		Allergies: in.Allergies,
		Address:   in.Address,
		Notes:     in.Notes,
		CreatedAt: FormatDate(now),
	}
}

func (u PatientUpdate) Apply(p *Patient) {
	setString(&p.FirstName, u.FirstName)
	setString(&p.LastName, u.LastName)
	setString(&p.Phone, u.Phone)
	setString(&p.Email, u.Email)
	setString(&p.BirthDate, u.BirthDate)
	setString(&p.Gender, u.Gender)
	setString(&p.BloodType, u.BloodType)
	setString(&p.Allergies, u.Allergies)
	setString(&p.Address, u.Address)
	setString(&p.Notes, u.Notes)
}

func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
