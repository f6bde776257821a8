package core

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/queue"
)

// enqueueVerificationEmail schedules a verification email. Failures are
// logged, never surfaced: email delivery is fire-and-forget from the
// caller's point of view. A duplicate job inside the cooldown bucket is
// the rate limit doing its job.
func (a *App) enqueueVerificationEmail(email string) {
	cooldown := a.configProvider.Get().RateLimits.EmailVerificationCooldown.Duration

	payload, err := json.Marshal(queue.PayloadEmailVerification{
		Email:          email,
		CooldownBucket: queue.CoolDownBucket(cooldown, time.Now()),
	})
	if err != nil {
		a.logger.Error("failed to marshal verification job payload", "err", err)
		return
	}

	err = a.dbQueue.InsertJob(db.Job{
		JobType: queue.JobTypeEmailVerification,
		Payload: payload,
	})
	if err != nil {
		if errors.Is(err, db.ErrConstraintUnique) {
			a.logger.Debug("verification email already queued", "email", email)
			return
		}
		a.logger.Error("failed to enqueue verification email", "email", email, "err", err)
	}
}

// enqueuePasswordResetEmail schedules a password reset email under the
// same fire-and-forget policy as enqueueVerificationEmail.
func (a *App) enqueuePasswordResetEmail(email string) {
	cooldown := a.configProvider.Get().RateLimits.PasswordResetCooldown.Duration

	payload, err := json.Marshal(queue.PayloadPasswordReset{
		Email:          email,
		CooldownBucket: queue.CoolDownBucket(cooldown, time.Now()),
	})
	if err != nil {
		a.logger.Error("failed to marshal password reset job payload", "err", err)
		return
	}

	err = a.dbQueue.InsertJob(db.Job{
		JobType: queue.JobTypePasswordReset,
		Payload: payload,
	})
	if err != nil {
		if errors.Is(err, db.ErrConstraintUnique) {
			a.logger.Debug("password reset email already queued", "email", email)
			return
		}
		a.logger.Error("failed to enqueue password reset email", "email", email, "err", err)
	}
}
