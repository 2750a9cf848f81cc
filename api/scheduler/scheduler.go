package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/emergencyai/dispatch-api/api"
)

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron    *cron.Cron
	revoked *api.RevocationList
}

// NewScheduler creates a new scheduler instance
func NewScheduler(revoked *api.RevocationList) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		revoked: revoked,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Expired revocation entries are dead weight once the token itself
	// can no longer validate
	_, err := s.cron.AddFunc("@hourly", s.sweepRevokedTokens)
	if err != nil {
		zap.S().Errorw("failed to register revocation sweep job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Revocation sweep scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Revocation sweep scheduler stopped")
}

func (s *Scheduler) sweepRevokedTokens() {
	removed := s.revoked.Sweep(time.Now())
	zap.S().Infow("Revocation sweep complete", "removed", removed)
}
