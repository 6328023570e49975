package models

import "time"

type MedicalRecord struct {
	ID          string     `json:"id"`
	PatientID   string     `json:"patientId"`
	Type        RecordType `json:"type"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Date        string     `json:"date"`
	Attachments []string   `json:"attachments,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"`
}

type MedicalRecordInput struct {
	PatientID   string     `json:"patientId" binding:"required"`
	Type        RecordType `json:"type" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Content     string     `json:"content"`
	Attachments []string   `json:"attachments"`
}

type MedicalRecordUpdate struct {
	Type        *RecordType `json:"type"`
	Title       *string     `json:"title"`
	Content     *string     `json:"content"`
	Attachments *[]string   `json:"attachments"`
}

func NewMedicalRecord(id string, in MedicalRecordInput, createdBy string, now time.Time) MedicalRecord {
	return MedicalRecord{
		ID:          id,
		PatientID:   in.PatientID,
		Type:        in.Type,
		Title:       in.Title,
		Content:     in.Content,
		Date:        FormatDate(now),
		Attachments: append([]string(nil), in.Attachments...),
		CreatedBy:   createdBy,
	}
}

func (u MedicalRecordUpdate) Apply(r *MedicalRecord) {
	if u.Type != nil {
		r.Type = *u.Type
	}
	setString(&r.Title, u.Title)
	setString(&r.Content, u.Content)
	if u.Attachments != nil {
		r.Attachments = append([]string(nil), (*u.Attachments)...)
	}
}

// Clone returns a copy that shares no slices with r.
func (r MedicalRecord) Clone() MedicalRecord {
	r.Attachments = append([]string(nil), r.Attachments...)
	return r
}
