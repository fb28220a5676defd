// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package account

import "time"

// Login failure accounting.
const (
	// LockoutDuration is how long an account stays locked after too
	// many failed logins.
	LockoutDuration = 15 * time.Minute

	// LockoutThreshold is the number of consecutive failures that
	// triggers a lockout.
	LockoutThreshold = 7
)

// isLockedOut returns true if the lockout time is in the future.
func isLockedOut(lockedUntil *time.Time) bool {
	return lockedUntil != nil && lockedUntil.After(time.Now())
}

// computeLockoutTime returns the lockout timestamp for the given
// failure count, or nil below the threshold.
func computeLockoutTime(failures int) *time.Time {
	if failures < LockoutThreshold {
		return nil
	}
	lockout := time.Now().Add(LockoutDuration)
	return &lockout
}
