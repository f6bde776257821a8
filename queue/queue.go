package queue

import (
	"time"
)

// PayloadEmailVerification contains the email verification details.
// CooldownBucket throttles repeated requests for the same address: the
// partial unique index on (job_type, payload) rejects a second insert
// with the same bucket while the first is still pending.
type PayloadEmailVerification struct {
	Email          string `json:"email"`
	CooldownBucket int    `json:"cooldown_bucket"`
}

type PayloadPasswordReset struct {
	Email string `json:"email"`
	// CooldownBucket is the time bucket number calculated from the current time divided by the cooldown duration.
	// This provides a basic rate limiting mechanism where only one password reset request is allowed per time bucket.
	// The bucket number is calculated as: floor(current Unix time / cooldown duration in seconds)
	//
	// For example, with a 2 hour cooldown:
	// - All requests between 12:00-13:59 will get bucket X
	// - All requests between 14:00-15:59 will get bucket X+1
	//
	// This creates a simple but effective rate limit:
	// - Users can only make one request per time bucket
	// - If a user requests at the end of a bucket (e.g. 13:58), they can make another request shortly after (e.g. 14:02)
	// - The unique constraint on (job_type, payload) prevents multiple insertions in the same bucket
	CooldownBucket int `json:"cooldown_bucket"`
}

// Job types
const (
	JobTypeEmailVerification = "job_type_email_verification"
	JobTypePasswordReset     = "job_type_password_reset"
)

// Job statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// CoolDownBucket calculates which time bucket the given time falls into
// based on the duration period. It returns the number of complete
// duration periods since the Unix epoch.
//
// Multiple requests within the same duration period get the same bucket
// number, so the bucket can serve as a dedup key for rate limiting.
//
// Panics if duration is zero or negative.
func CoolDownBucket(duration time.Duration, t time.Time) int {
	if duration <= 0 {
		panic("duration must be positive")
	}

	return int(t.Unix() / int64(duration.Seconds()))
}
