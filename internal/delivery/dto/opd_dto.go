package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
//
// Field names follow the established OPD wire format: camelCase keys and the
// verbatim status/priority enumeration values.

type CheckInRequest struct {
	// PatientUser is required for staff-assisted check-in and ignored when
	// the actor is a patient checking in themselves.
	PatientUser string   `json:"patientUser" validate:"omitempty,uuid"`
	Department  string   `json:"department" validate:"required"`
	Chair       string   `json:"chair"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=Low Normal High Emergency"`
	Symptoms    []string `json:"symptoms"`
	TriageNotes string   `json:"triageNotes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	// TriageNotes overwrites the stored notes when present; nil leaves them
	// untouched.
	TriageNotes *string `json:"triageNotes"`
}

// Response DTOs

// UserSummary is the read-side join of directory display fields onto a
// token; it is not part of the persisted token shape.
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Department string    `json:"department,omitempty"`
}

type QueueTokenResponse struct {
	ID              uuid.UUID    `json:"id"`
	TokenNumber     int          `json:"tokenNumber"`
	TokenLabel      string       `json:"tokenLabel"`
	Department      string       `json:"department"`
	PatientUser     *UserSummary `json:"patientUser"`
	AssignedStudent *UserSummary `json:"assignedStudent"`
	AssignedFaculty *UserSummary `json:"assignedFaculty"`
	Chair           string       `json:"chair"`
	Status          string       `json:"status"`
	Priority        string       `json:"priority"`
	Symptoms        []string     `json:"symptoms"`
	TriageNotes     string       `json:"triageNotes"`
	CheckedInBy     *uuid.UUID   `json:"checkedInBy,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

type QueueListResponse struct {
	Items []QueueTokenResponse `json:"items"`
	Total int                  `json:"total"`
}
