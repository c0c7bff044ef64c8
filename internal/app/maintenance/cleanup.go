package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/pawhaven/pawhaven/internal/auth"
	"github.com/pawhaven/pawhaven/internal/services"
	"github.com/pawhaven/pawhaven/pkg/logger"
)

const (
	defaultAuditRetentionDays = 90
	defaultSessionSpec        = "@hourly"
	defaultInviteSpec         = "@hourly"
	defaultAuditSpec          = "@daily"
	defaultCampaignSpec       = "@hourly"
)

// Cleaner coordinates background maintenance tasks: purging expired sessions,
// marking stale invites, closing funded campaigns, and pruning old audit logs.
type Cleaner struct {
	sessions  *iauth.SessionService
	invites   *services.InviteService
	campaigns *services.CampaignService
	audit     *services.AuditService
	cron      *cron.Cron
	log       *zap.Logger
	retention int

	sessionSchedule  string
	inviteSchedule   string
	auditSchedule    string
	campaignSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// WithInviteSchedule overrides the cron specification for the invite expiry sweep.
func WithInviteSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.inviteSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// WithCampaignSchedule overrides the cron specification for the campaign completion sweep.
func WithCampaignSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.campaignSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency results in
// the corresponding cleanup job being skipped.
func NewCleaner(sessions *iauth.SessionService, invites *services.InviteService, campaigns *services.CampaignService, audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:         sessions,
		invites:          invites,
		campaigns:        campaigns,
		audit:            audit,
		retention:        defaultAuditRetentionDays,
		sessionSchedule:  defaultSessionSpec,
		inviteSchedule:   defaultInviteSpec,
		auditSchedule:    defaultAuditSpec,
		campaignSchedule: defaultCampaignSpec,
		log:              logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one cleanup is enabled.
func (c *Cleaner) Start() error {
	registered := false

	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
			if _, err := c.sessions.CleanupExpired(context.Background()); err != nil {
				c.log.Warn("session cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		registered = true
	}

	if c.invites != nil {
		if _, err := c.cron.AddFunc(c.inviteSchedule, func() {
			if _, err := c.invites.ExpirePending(context.Background()); err != nil {
				c.log.Warn("invite expiry sweep failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		registered = true
	}

	if c.campaigns != nil {
		if _, err := c.cron.AddFunc(c.campaignSchedule, func() {
			if _, err := c.campaigns.CompleteGoalReached(context.Background()); err != nil {
				c.log.Warn("campaign completion sweep failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		registered = true
	}

	if c.audit != nil && c.retention > 0 {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			if _, err := c.audit.CleanupOlderThan(context.Background(), c.retention); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		registered = true
	}

	if registered {
		c.cron.Start()
	}
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.invites != nil {
		if _, err := c.invites.ExpirePending(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.campaigns != nil {
		if _, err := c.campaigns.CompleteGoalReached(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.audit != nil && c.retention > 0 {
		if _, err := c.audit.CleanupOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
