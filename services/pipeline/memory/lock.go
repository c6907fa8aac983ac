// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memory

import (
	"fmt"
	"os"
	"path/filepath"
)

// fileLocker is the platform-specific advisory lock. Implemented with
// flock(2) on Unix; a no-op on Windows where flock semantics are not
// available (champion writes stay atomic either way).
type fileLocker interface {
	lock(f *os.File) error
	unlock(f *os.File) error
}

// LockGoal acquires the advisory lock for one goal and returns a
// release function.
//
// The lock is non-blocking: if another process holds it, ErrGoalLocked
// is returned immediately so the caller can decide whether to retry or
// abandon. The lock file lives inside the goal directory and is left
// in place after release; only the flock is dropped.
//
// Hold the lock around champion read-modify-write when runs for the
// same goal may execute concurrently. Sequential runs do not need it.
func (s *Store) LockGoal(goalID string) (release func(), err error) {
	dir := s.goalDir(goalID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating goal directory for lock: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, ".lock"), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file for %s: %w", goalID, err)
	}

	locker := newPlatformLocker()
	if err := locker.lock(f); err != nil {
		_ = f.Close()
		if err == ErrGoalLocked {
			return nil, fmt.Errorf("goal %s: %w", goalID, ErrGoalLocked)
		}
		return nil, fmt.Errorf("locking goal %s: %w", goalID, err)
	}

	return func() {
		_ = locker.unlock(f)
		_ = f.Close()
	}, nil
}
