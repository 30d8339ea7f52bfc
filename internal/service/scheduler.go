package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"whatsapp-boost/internal/model"
	"whatsapp-boost/pkg/logger"
)

// SessionCleaner removes expired chat sessions
type SessionCleaner interface {
	CleanupExpired() (int64, error)
}

// RoundSource provides the current lottery round
type RoundSource interface {
	CurrentRound(ctx context.Context, token string) (*model.LotteryRound, error)
}

// Scheduler runs the periodic jobs of the bot
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: log,
	}
}

// ScheduleSessionCleanup removes expired sessions on the given cron spec
func (s *Scheduler) ScheduleSessionCleanup(spec string, cleaner SessionCleaner) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.cleanupSessions(cleaner)
	})
	if err != nil {
		return fmt.Errorf("invalid session cleanup schedule %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) cleanupSessions(cleaner SessionCleaner) {
	count, err := cleaner.CleanupExpired()
	if err != nil {
		s.logger.Error("Failed to cleanup expired sessions", "error", err)
	} else if count > 0 {
		s.logger.Info("Cleaned up expired sessions", "count", count)
	}
}

// ScheduleLotteryAnnouncement posts the open round to a group on the given cron spec
func (s *Scheduler) ScheduleLotteryAnnouncement(spec, groupJID string, rounds RoundSource, messenger Messenger) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.announceRound(ctx, groupJID, rounds, messenger)
	})
	if err != nil {
		return fmt.Errorf("invalid lottery announcement schedule %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) announceRound(ctx context.Context, groupJID string, rounds RoundSource, messenger Messenger) {
	round, err := rounds.CurrentRound(ctx, "")
	if err != nil {
		s.logger.Warn("Failed to fetch lottery round for announcement", "error", err)
		return
	}
	if round.Status != model.RoundOpen {
		return
	}

	if err := messenger.SendText(ctx, groupJID, formatRoundAnnouncement(round)); err != nil {
		s.logger.Error("Failed to post lottery announcement", "group", groupJID, "error", err)
		return
	}
	s.logger.Info("Lottery announcement posted", "round_id", round.ID, "group", groupJID)
}

// Start starts the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
