package service

import (
	"context"

	"dental-opd-service/internal/domain/entity"
	"dental-opd-service/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService records queue mutations to the audit trail. Recording is
// best-effort: a failed write is logged and never fails the operation that
// triggered it.
type AuditService interface {
	LogCheckIn(ctx context.Context, actorID uuid.UUID, token *entity.QueueToken)
	LogStatusUpdate(ctx context.Context, actorID uuid.UUID, token *entity.QueueToken, from, to entity.TokenStatus)
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogCheckIn(ctx context.Context, actorID uuid.UUID, token *entity.QueueToken) {
	metadata := entity.JSON{
		"entity":       "queue_token",
		"entity_id":    token.ID.String(),
		"token_number": token.TokenNumber,
		"department":   token.Department,
		"chair":        token.Chair,
	}

	s.record(ctx, actorID, entity.AuditActionQueueCheckIn, metadata)
}

func (s *auditService) LogStatusUpdate(ctx context.Context, actorID uuid.UUID, token *entity.QueueToken, from, to entity.TokenStatus) {
	metadata := entity.JSON{
		"entity":     "queue_token",
		"entity_id":  token.ID.String(),
		"old_status": string(from),
		"new_status": string(to),
	}

	s.record(ctx, actorID, entity.AuditActionQueueStatusUpdate, metadata)
}

func (s *auditService) record(ctx context.Context, actorID uuid.UUID, action string, metadata entity.JSON) {
	auditLog := &entity.AuditLog{
		UserID:   &actorID,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
	}
}
