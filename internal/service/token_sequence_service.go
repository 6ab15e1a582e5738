package service

import (
	"context"
	"fmt"
	"time"

	"dental-opd-service/internal/domain/repository"
	"dental-opd-service/pkg/daywindow"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// tokenSeqKeyPrefix + day key holds the highest token number issued that day.
const tokenSeqKeyPrefix = "opd:token_seq:"

// Grace past local midnight before the day's counter key expires; late
// writers near the boundary still see it while their window is current.
const tokenSeqTTLGrace = time.Hour

// nextTokenScript increments the day counter only when it has already been
// seeded from the store. Returning -1 for an absent key (instead of letting
// INCR create it at 0) keeps a flushed Redis from restarting numbering below
// numbers that were already persisted.
//
// Redis Go client automatically uses EVALSHA after the first call, so the
// script body is not resent per check-in.
var nextTokenScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1
	end
	return redis.call('INCR', KEYS[1])
`)

// TokenSequence hands out the next daily token number.
type TokenSequence interface {
	// Next reserves the next token number for the window.
	Next(ctx context.Context, w daywindow.Window) (int, error)
	// Invalidate drops the window's counter so the next reservation reseeds
	// from the store. Called after a unique-constraint collision.
	Invalidate(ctx context.Context, w daywindow.Window) error
}

// TokenSequenceService implements TokenSequence on Redis, seeded from the
// token store's MAX(token_number) for the day. A single atomic INCR per
// check-in is the per-day serialization point; the database unique index on
// (token_day, token_number) remains the hard backstop.
type TokenSequenceService struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
	tokenRepo   repository.QueueTokenRepository
}

func NewTokenSequenceService(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger, tokenRepo repository.QueueTokenRepository) *TokenSequenceService {
	return &TokenSequenceService{
		db:          db,
		redisClient: redisClient,
		log:         log,
		tokenRepo:   tokenRepo,
	}
}

func (s *TokenSequenceService) Next(ctx context.Context, w daywindow.Window) (int, error) {
	key := tokenSeqKeyPrefix + w.DayKey()

	// Two rounds: miss on the first triggers a seed, then the INCR must
	// succeed because SetNX guarantees the key exists afterwards.
	for attempt := 0; attempt < 2; attempt++ {
		n, err := nextTokenScript.Run(ctx, s.redisClient, []string{key}).Int()
		if err != nil {
			return 0, fmt.Errorf("token sequence incr for %s: %w", w.DayKey(), err)
		}
		if n > 0 {
			return n, nil
		}

		if err := s.seed(ctx, w, key); err != nil {
			return 0, err
		}
	}

	return 0, fmt.Errorf("token sequence for %s not seeded after retry", w.DayKey())
}

func (s *TokenSequenceService) Invalidate(ctx context.Context, w daywindow.Window) error {
	key := tokenSeqKeyPrefix + w.DayKey()
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		s.log.Warnf("Failed to invalidate token sequence %s: %+v", key, err)
		return fmt.Errorf("invalidate token sequence %s: %w", key, err)
	}
	return nil
}

// SyncOnStartup seeds today's counter from the database before the service
// accepts traffic, so numbering survives Redis restarts.
func (s *TokenSequenceService) SyncOnStartup(ctx context.Context, loc *time.Location) error {
	w := daywindow.Today(loc)
	key := tokenSeqKeyPrefix + w.DayKey()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	if err := s.seed(ctx, w, key); err != nil {
		return err
	}

	s.log.Infof("Token sequence synced for %s", w.DayKey())
	return nil
}

// seed initializes the counter with the day's persisted maximum. SetNX keeps
// concurrent seeders from clobbering a counter another writer already
// advanced; the first seeder wins and everyone increments from there.
func (s *TokenSequenceService) seed(ctx context.Context, w daywindow.Window, key string) error {
	max, err := s.tokenRepo.MaxTokenNumber(s.db.WithContext(ctx), w)
	if err != nil {
		return fmt.Errorf("query max token number for %s: %w", w.DayKey(), err)
	}

	ttl := time.Until(w.End.Add(tokenSeqTTLGrace))
	if ttl <= 0 {
		ttl = time.Minute
	}

	created, err := s.redisClient.SetNX(ctx, key, max, ttl).Result()
	if err != nil {
		return fmt.Errorf("seed token sequence %s: %w", key, err)
	}
	if created {
		s.log.Debugf("Seeded token sequence %s at %d (TTL %v)", key, max, ttl)
	}
	return nil
}
