package linkpub

import "time"

// Default freshness windows.
const (
	DefaultLifetime     = 3600 * time.Second
	DefaultRetryTimeout = 600 * time.Second
)

// Status is the conclusion of the last fetch attempt.
type Status string

// Status values. StatusNone means no attempt has completed yet.
const (
	StatusNone    Status = ""
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Metadata is the bookkeeping kept next to the cached links.
type Metadata struct {
	// Validator is the server-issued change token echoed back as
	// If-Modified-Since. Empty means none.
	Validator string

	// LastAttempt is when the last fetch attempt completed. Zero means none.
	LastAttempt time.Time

	// LastStatus is the conclusion of that attempt.
	LastStatus Status
}

// FreshnessPolicy decides when the cache must be refreshed.
//
// A failing dispenser is retried after RetryTimeout; a healthy one is
// re-polled after Lifetime.
type FreshnessPolicy struct {
	Lifetime     time.Duration
	RetryTimeout time.Duration
}

// DefaultFreshnessPolicy returns the policy with the default windows.
func DefaultFreshnessPolicy() FreshnessPolicy {
	return FreshnessPolicy{Lifetime: DefaultLifetime, RetryTimeout: DefaultRetryTimeout}
}

// Due reports whether a refresh should be attempted at now.
func (p FreshnessPolicy) Due(meta Metadata, now time.Time) bool {
	if meta.LastAttempt.IsZero() {
		return true
	}
	return !now.Before(p.NextAttempt(meta))
}

// NextAttempt returns the earliest time a refresh becomes due.
// It returns the zero time on cold start.
func (p FreshnessPolicy) NextAttempt(meta Metadata) time.Time {
	if meta.LastAttempt.IsZero() {
		return time.Time{}
	}
	if meta.LastStatus == StatusFailure {
		return meta.LastAttempt.Add(p.RetryTimeout)
	}
	return meta.LastAttempt.Add(p.Lifetime)
}
