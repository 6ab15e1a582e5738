package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"dental-opd-service/internal/converter"
	"dental-opd-service/internal/delivery/dto"
	"dental-opd-service/internal/domain/entity"
	"dental-opd-service/internal/domain/repository"
	"dental-opd-service/internal/service"
	"dental-opd-service/pkg/daywindow"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientRequired    = errors.New("patient user is required")
	ErrDepartmentRequired = errors.New("department is required")
	ErrInvalidPatientID   = errors.New("invalid patient user id")
	ErrInvalidPriority    = errors.New("invalid priority value")
	ErrPatientNotFound    = errors.New("patient account not found or inactive")
	ErrTokenNotFound      = errors.New("queue token not found")
	ErrInvalidStatus      = errors.New("invalid status value")
	ErrForbidden          = errors.New("not allowed to update this token")
	ErrIllegalTransition  = errors.New("status transition not allowed from current status")
	ErrStatusConflict     = errors.New("token status was changed concurrently")
	ErrCheckInContention  = errors.New("could not reserve a token number")
)

// maxCheckInAttempts bounds the reserve-assign-insert retry loop when the
// day/number unique index rejects an insert.
const maxCheckInAttempts = 3

type OPDUsecase interface {
	CheckIn(ctx context.Context, req *dto.CheckInRequest, actor entity.Actor) (*dto.QueueTokenResponse, error)
	GetQueue(ctx context.Context, filter entity.QueueFilter) (*dto.QueueListResponse, error)
	UpdateStatus(ctx context.Context, tokenID uuid.UUID, req *dto.UpdateStatusRequest, actor entity.Actor) (*dto.QueueTokenResponse, error)
}

type opdUsecase struct {
	db        *gorm.DB
	log       *logrus.Logger
	loc       *time.Location
	userRepo  repository.UserRepository
	tokenRepo repository.QueueTokenRepository
	assigner  *service.AssignmentService
	sequence  service.TokenSequence
	audit     service.AuditService
}

func NewOPDUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	loc *time.Location,
	userRepo repository.UserRepository,
	tokenRepo repository.QueueTokenRepository,
	assigner *service.AssignmentService,
	sequence service.TokenSequence,
	audit service.AuditService,
) OPDUsecase {
	return &opdUsecase{
		db:        db,
		log:       log,
		loc:       loc,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		assigner:  assigner,
		sequence:  sequence,
		audit:     audit,
	}
}

// CheckIn creates a queue token for a walk-in visit: it reserves the next
// daily token number, assigns the least-loaded student, faculty and chair for
// the department, and persists the token as Waiting.
func (u *opdUsecase) CheckIn(ctx context.Context, req *dto.CheckInRequest, actor entity.Actor) (*dto.QueueTokenResponse, error) {
	department := strings.TrimSpace(req.Department)
	if department == "" {
		return nil, ErrDepartmentRequired
	}

	priority := entity.TokenPriorityNormal
	if req.Priority != "" {
		priority = entity.TokenPriority(req.Priority)
		if !priority.Valid() {
			return nil, ErrInvalidPriority
		}
	}

	db := u.db.WithContext(ctx)

	patientID, err := u.resolvePatient(db, req, actor)
	if err != nil {
		return nil, err
	}

	symptoms := make([]string, 0, len(req.Symptoms))
	for _, symptom := range req.Symptoms {
		if s := strings.TrimSpace(symptom); s != "" {
			symptoms = append(symptoms, s)
		}
	}

	w := daywindow.Today(u.loc)
	checkedInBy := actor.ID

	for attempt := 1; attempt <= maxCheckInAttempts; attempt++ {
		tokenNumber, err := u.sequence.Next(ctx, w)
		if err != nil {
			// Redis unavailable: fall back to read-max reservation. The
			// unique index still arbitrates collisions below.
			u.log.Warnf("Token sequence unavailable, falling back to store max: %+v", err)
			max, maxErr := u.tokenRepo.MaxTokenNumber(db, w)
			if maxErr != nil {
				u.log.Warnf("Failed to read max token number: %+v", maxErr)
				return nil, maxErr
			}
			tokenNumber = max + 1
		}

		studentID, err := u.assigner.PickLeastLoaded(db, w, entity.RoleStudent, department)
		if err != nil {
			u.log.Warnf("Failed to pick student for %s: %+v", department, err)
			return nil, err
		}

		facultyID, err := u.assigner.PickLeastLoaded(db, w, entity.RoleFaculty, department)
		if err != nil {
			u.log.Warnf("Failed to pick faculty for %s: %+v", department, err)
			return nil, err
		}

		chair, err := u.assigner.PickChair(db, w, department, req.Chair)
		if err != nil {
			u.log.Warnf("Failed to pick chair for %s: %+v", department, err)
			return nil, err
		}

		token := &entity.QueueToken{
			TokenNumber:       tokenNumber,
			TokenDay:          w.Start,
			TokenLabel:        entity.LabelForNumber(tokenNumber),
			Department:        department,
			PatientID:         patientID,
			AssignedStudentID: studentID,
			AssignedFacultyID: facultyID,
			Chair:             chair,
			Status:            entity.TokenStatusWaiting,
			Priority:          priority,
			Symptoms:          symptoms,
			TriageNotes:       strings.TrimSpace(req.TriageNotes),
			CheckedInBy:       &checkedInBy,
		}

		if err := u.tokenRepo.Insert(db, token); err != nil {
			if isDuplicateKeyError(err, "day_number") {
				u.log.Warnf("Token number %d collided for %s (attempt %d), retrying", tokenNumber, w.DayKey(), attempt)
				if invErr := u.sequence.Invalidate(ctx, w); invErr != nil {
					u.log.Warnf("Failed to invalidate token sequence: %+v", invErr)
				}
				continue
			}
			u.log.Warnf("Failed to insert queue token: %+v", err)
			return nil, err
		}

		u.audit.LogCheckIn(ctx, actor.ID, token)
		u.log.Infof("Checked in patient %s: number=%d label=%s department=%s chair=%s", patientID, tokenNumber, token.TokenLabel, department, chair)

		full, err := u.tokenRepo.FindByID(db, token.ID)
		if err != nil || full == nil {
			// Return the bare token if the enrichment reload fails.
			u.log.Warnf("Failed to reload queue token %s: %+v", token.ID, err)
			return converter.QueueTokenToResponse(token), nil
		}
		return converter.QueueTokenToResponse(full), nil
	}

	return nil, ErrCheckInContention
}

// GetQueue lists today's tokens ordered by token number, optionally filtered
// by department and status.
func (u *opdUsecase) GetQueue(ctx context.Context, filter entity.QueueFilter) (*dto.QueueListResponse, error) {
	filter.Department = strings.TrimSpace(filter.Department)
	filter.Status = strings.TrimSpace(filter.Status)
	if filter.Status != "" && !entity.TokenStatus(filter.Status).Valid() {
		return nil, ErrInvalidStatus
	}

	w := daywindow.Today(u.loc)
	tokens, err := u.tokenRepo.Query(u.db.WithContext(ctx), w, filter)
	if err != nil {
		u.log.Warnf("Failed to query queue: %+v", err)
		return nil, err
	}

	return &dto.QueueListResponse{
		Items: converter.QueueTokensToResponses(tokens),
		Total: len(tokens),
	}, nil
}

// UpdateStatus applies a status transition to a token after checking the
// actor's authorization and the transition adjacency table.
func (u *opdUsecase) UpdateStatus(ctx context.Context, tokenID uuid.UUID, req *dto.UpdateStatusRequest, actor entity.Actor) (*dto.QueueTokenResponse, error) {
	next := entity.TokenStatus(strings.TrimSpace(req.Status))
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	db := u.db.WithContext(ctx)

	token, err := u.tokenRepo.FindByID(db, tokenID)
	if err != nil {
		u.log.Warnf("Failed to find queue token %s: %+v", tokenID, err)
		return nil, err
	}
	if token == nil {
		return nil, ErrTokenNotFound
	}

	if err := authorizeStatusUpdate(token, next, actor); err != nil {
		return nil, err
	}

	if !token.Status.CanTransitionTo(next) {
		return nil, ErrIllegalTransition
	}

	rows, err := u.tokenRepo.ApplyStatus(db, tokenID, token.Status, next, req.TriageNotes)
	if err != nil {
		u.log.Warnf("Failed to update queue token %s: %+v", tokenID, err)
		return nil, err
	}
	if rows == 0 {
		// Someone transitioned the token between our read and the guarded
		// update; the authorization decision no longer applies.
		return nil, ErrStatusConflict
	}

	u.audit.LogStatusUpdate(ctx, actor.ID, token, token.Status, next)
	u.log.Infof("Queue token %s: %s -> %s by %s (%s)", tokenID, token.Status, next, actor.ID, actor.Role)

	full, err := u.tokenRepo.FindByID(db, tokenID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload queue token %s: %+v", tokenID, err)
		token.Status = next
		return converter.QueueTokenToResponse(token), nil
	}
	return converter.QueueTokenToResponse(full), nil
}

// resolvePatient determines which patient account the token is for: patients
// always check in themselves, staff must name an existing active patient.
func (u *opdUsecase) resolvePatient(db *gorm.DB, req *dto.CheckInRequest, actor entity.Actor) (uuid.UUID, error) {
	patientID := actor.ID
	if actor.Role != entity.RolePatient {
		raw := strings.TrimSpace(req.PatientUser)
		if raw == "" {
			return uuid.Nil, ErrPatientRequired
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, ErrInvalidPatientID
		}
		patientID = id
	}

	user, err := u.userRepo.FindByID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return uuid.Nil, err
	}
	if user == nil || user.Role != entity.RolePatient || !user.Active() {
		return uuid.Nil, ErrPatientNotFound
	}

	return patientID, nil
}

// authorizeStatusUpdate enforces the role matrix: admins may set anything,
// faculty and students only tokens assigned to them, patients only their own
// token and only to Cancelled.
func authorizeStatusUpdate(token *entity.QueueToken, next entity.TokenStatus, actor entity.Actor) error {
	switch actor.Role {
	case entity.RoleAdmin:
		return nil
	case entity.RoleFaculty:
		if token.AssignedFacultyID != nil && *token.AssignedFacultyID == actor.ID {
			return nil
		}
	case entity.RoleStudent:
		if token.AssignedStudentID != nil && *token.AssignedStudentID == actor.ID {
			return nil
		}
	case entity.RolePatient:
		if token.PatientID == actor.ID && next == entity.TokenStatusCancelled {
			return nil
		}
	}
	return ErrForbidden
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint
// violation containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
