package keeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/stockdesk/usecase/session"
)

// SessionGuard is the part of the session store the keeper drives.
type SessionGuard interface {
	Token() string
	Validate(ctx context.Context) bool
	Logout(ctx context.Context)
}

// Config controls how often the held token is checked.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Outcome is the result of one check.
type Outcome int

const (
	OutcomeIdle Outcome = iota
	OutcomeExpired
	OutcomeValid
	OutcomeRejected
	// OutcomeAborted means the check was cancelled before the remote
	// answered. The session is kept.
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeExpired:
		return "expired"
	case OutcomeValid:
		return "valid"
	case OutcomeRejected:
		return "rejected"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Keeper periodically drops expired tokens locally and asks the remote to
// validate the rest.
type Keeper struct {
	session SessionGuard
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     Config
	now     func() time.Time
}

func New(guard SessionGuard, logger *zap.Logger, cfg Config) *Keeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Timeout <= 0 || cfg.Timeout > cfg.Interval {
		cfg.Timeout = cfg.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	k := &Keeper{
		session: guard,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
		now:     time.Now,
	}

	schedule := fmt.Sprintf("@every %s", cfg.Interval)
	if _, err := k.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		k.Check(ctx)
	}); err != nil {
		k.logger.Error("invalid keeper schedule", zap.String("schedule", schedule), zap.Error(err))
	}

	return k
}

// Start launches the cron scheduler.
func (k *Keeper) Start() {
	if k == nil || k.cron == nil {
		return
	}
	k.cron.Start()
	k.logger.Info("session keeper started", zap.Duration("interval", k.cfg.Interval))
}

// Stop waits for a running check to finish or ctx to expire.
func (k *Keeper) Stop(ctx context.Context) {
	if k == nil || k.cron == nil {
		return
	}
	stopCtx := k.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	k.logger.Info("session keeper stopped")
}

// Check runs one validation pass synchronously.
func (k *Keeper) Check(ctx context.Context) Outcome {
	token := k.session.Token()
	if token == "" {
		return OutcomeIdle
	}
	if session.Expired(token, k.now()) {
		k.logger.Info("token expired locally, logging out")
		k.session.Logout(ctx)
		return OutcomeExpired
	}
	if err := ctx.Err(); err != nil {
		k.logger.Debug("session check cancelled", zap.Error(err))
		return OutcomeAborted
	}
	if !k.session.Validate(ctx) {
		if err := ctx.Err(); err != nil {
			k.logger.Warn("session check cancelled before the remote answered", zap.Error(err))
			return OutcomeAborted
		}
		k.logger.Info("token no longer accepted")
		return OutcomeRejected
	}
	k.logger.Debug("token still valid")
	return OutcomeValid
}
