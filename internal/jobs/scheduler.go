// Package jobs runs the periodic maintenance work of the platform: releasing
// escrows of completed events and expiring stale pool invitations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"eventflex/internal/config"
	"eventflex/internal/logger"
	"eventflex/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	JobEscrowRelease    = "escrow_auto_release"
	JobInvitationExpiry = "invitation_expiry"

	runTimeout = time.Minute
)

type EscrowReleaser interface {
	AutoRelease(ctx context.Context, cutoff time.Time) (int, error)
}

type InvitationExpirer interface {
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler wraps a cron runner. A job that is still running when its next
// tick fires is skipped.
type Scheduler struct {
	cron        *cron.Cron
	cfg         config.JobsConfig
	escrows     EscrowReleaser
	invitations InvitationExpirer
	now         func() time.Time
}

func NewScheduler(cfg config.JobsConfig, escrows EscrowReleaser, invitations InvitationExpirer) *Scheduler {
	cronLogger := cron.PrintfLogger(logger.Log.WithField("component", "cron"))
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		cfg:         cfg,
		escrows:     escrows,
		invitations: invitations,
		now:         time.Now,
	}
}

// Start registers the jobs and starts the runner. It is a no-op when jobs are disabled.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		logger.Log.Info("background jobs disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(every(s.cfg.EscrowReleaseInterval), s.ReleaseEscrows); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", JobEscrowRelease, err)
	}
	if _, err := s.cron.AddFunc(every(s.cfg.InvitationExpiryInterval), s.ExpireInvitations); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", JobInvitationExpiry, err)
	}
	s.cron.Start()
	logger.Log.WithFields(logrus.Fields{
		"escrow_release":    s.cfg.EscrowReleaseInterval.String(),
		"invitation_expiry": s.cfg.InvitationExpiryInterval.String(),
	}).Info("background jobs started")
	return nil
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.Log.Warn("background jobs still running at shutdown")
	}
}

// ReleaseEscrows pays out escrows of events that completed at least
// EscrowAutoReleaseAfter ago and were never released by their host.
func (s *Scheduler) ReleaseEscrows() {
	s.run(JobEscrowRelease, func(ctx context.Context) (int64, error) {
		n, err := s.escrows.AutoRelease(ctx, s.now().Add(-s.cfg.EscrowAutoReleaseAfter))
		return int64(n), err
	})
}

func (s *Scheduler) ExpireInvitations() {
	s.run(JobInvitationExpiry, func(ctx context.Context) (int64, error) {
		return s.invitations.ExpirePending(ctx, s.now())
	})
}

func (s *Scheduler) run(job string, fn func(ctx context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	entry := logger.Log.WithField("job", job)
	start := time.Now()
	success := false
	defer func() {
		if r := recover(); r != nil {
			entry.WithField("panic", r).Error("job panicked")
		}
		metrics.RecordJobRun(job, time.Since(start), success)
	}()

	n, err := fn(ctx)
	if err != nil {
		entry.WithError(err).Error("job failed")
		return
	}
	success = true
	if n > 0 {
		entry.WithField("affected", n).Info("job completed")
	}
}

func every(d time.Duration) string {
	return "@every " + d.String()
}
