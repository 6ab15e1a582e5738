package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TokenStatus represents the lifecycle state of a queue token
type TokenStatus string

const (
	TokenStatusWaiting    TokenStatus = "Waiting"
	TokenStatusInProgress TokenStatus = "InProgress"
	TokenStatusCompleted  TokenStatus = "Completed"
	TokenStatusCancelled  TokenStatus = "Cancelled"
)

// TokenPriority is informational triage priority; it does not influence
// token ordering or assignment.
type TokenPriority string

const (
	TokenPriorityLow       TokenPriority = "Low"
	TokenPriorityNormal    TokenPriority = "Normal"
	TokenPriorityHigh      TokenPriority = "High"
	TokenPriorityEmergency TokenPriority = "Emergency"
)

// statusTransitions is the allowed-next-states table. Completed and
// Cancelled are terminal.
var statusTransitions = map[TokenStatus][]TokenStatus{
	TokenStatusWaiting:    {TokenStatusInProgress, TokenStatusCancelled},
	TokenStatusInProgress: {TokenStatusCompleted, TokenStatusCancelled},
	TokenStatusCompleted:  {},
	TokenStatusCancelled:  {},
}

// Valid reports whether s is one of the four known statuses.
func (s TokenStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsTerminal reports whether s has no outgoing transitions.
func (s TokenStatus) IsTerminal() bool {
	return s == TokenStatusCompleted || s == TokenStatusCancelled
}

// CanTransitionTo reports whether next is in the allowed-next-states set
// for s.
func (s TokenStatus) CanTransitionTo(next TokenStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether p is one of the known priorities.
func (p TokenPriority) Valid() bool {
	switch p {
	case TokenPriorityLow, TokenPriorityNormal, TokenPriorityHigh, TokenPriorityEmergency:
		return true
	}
	return false
}

// LabelForNumber derives the display label from a token number: "T" plus the
// number zero-padded to three digits. The label is a pure projection of the
// number and is never parsed back.
func LabelForNumber(n int) string {
	return fmt.Sprintf("T%03d", n)
}

// QueueToken is one walk-in visit in the same-day OPD queue. TokenNumber is
// unique per calendar day; the (token_day, token_number) unique index is the
// hard guarantee backing the Redis sequence.
type QueueToken struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TokenNumber       int            `gorm:"not null;uniqueIndex:idx_queue_tokens_day_number,priority:2" json:"token_number"`
	TokenDay          time.Time      `gorm:"type:date;not null;uniqueIndex:idx_queue_tokens_day_number,priority:1" json:"-"`
	TokenLabel        string         `gorm:"type:varchar(10);not null" json:"token_label"`
	Department        string         `gorm:"type:varchar(100);not null;index" json:"department"`
	PatientID         uuid.UUID      `gorm:"column:patient_user_id;type:uuid;not null;index" json:"patient_user_id"`
	AssignedStudentID *uuid.UUID     `gorm:"type:uuid;index" json:"assigned_student_id,omitempty"`
	AssignedFacultyID *uuid.UUID     `gorm:"type:uuid;index" json:"assigned_faculty_id,omitempty"`
	Chair             string         `gorm:"type:varchar(50)" json:"chair"`
	Status            TokenStatus    `gorm:"type:varchar(20);not null;default:'Waiting';index" json:"status"`
	Priority          TokenPriority  `gorm:"type:varchar(20);not null;default:'Normal'" json:"priority"`
	Symptoms          pq.StringArray `gorm:"type:text[]" json:"symptoms"`
	TriageNotes       string         `gorm:"type:text" json:"triage_notes"`
	CheckedInBy       *uuid.UUID     `gorm:"type:uuid" json:"checked_in_by,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient         User  `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	AssignedStudent *User `gorm:"foreignKey:AssignedStudentID" json:"student,omitempty"`
	AssignedFaculty *User `gorm:"foreignKey:AssignedFacultyID" json:"faculty,omitempty"`
}

func (QueueToken) TableName() string {
	return "queue_tokens"
}

// IsActive reports whether the token still occupies staff/chair capacity for
// load-balancing purposes.
func (t *QueueToken) IsActive() bool {
	return t.Status == TokenStatusWaiting || t.Status == TokenStatusInProgress
}
